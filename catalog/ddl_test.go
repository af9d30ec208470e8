package catalog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/sqltypes"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestProcessCreateMetaTable(t *testing.T) {
	db := NewDatabaseMeta()
	ProcessCreateMeta(testLogger(), "CREATEMETA T Publisher ON HFRAG WHERE id:int name:str nation:str", db)

	tm, ok := db.Table("Publisher")
	require.True(t, ok)
	require.Equal(t, HFRAG, tm.FragType)
	require.Equal(t, []string{"id", "name", "nation"}, tm.Columns)
	require.Equal(t, "int", tm.ColumnType["id"])
	require.Equal(t, "str", tm.ColumnType["nation"])
}

func TestProcessCreateMetaHFrag(t *testing.T) {
	db := NewDatabaseMeta()
	ProcessCreateMeta(testLogger(), "CREATEMETA T Publisher ON HFRAG WHERE id:int nation:str", db)
	ProcessCreateMeta(testLogger(), "CREATEMETA H node1.p2 ON Publisher WHERE id >= 100000 AND id < 104000", db)

	tm, _ := db.Table("Publisher")
	require.Len(t, tm.HFrags, 1)
	f := tm.HFrags[0]
	require.Equal(t, "node1", f.Site)
	require.Equal(t, "p2", f.FragName)
	require.Len(t, f.Preds, 2)
	require.Equal(t, sqltypes.Column("Publisher.id"), f.Preds[0].Left)
	require.Equal(t, sqltypes.GE, f.Preds[0].Op)
	require.Equal(t, sqltypes.Int(100000), f.Preds[0].Right)
	require.Equal(t, sqltypes.LT, f.Preds[1].Op)
	require.Equal(t, []string{"node1"}, db.Sites)
}

func TestProcessCreateMetaVFrag(t *testing.T) {
	db := NewDatabaseMeta()
	ProcessCreateMeta(testLogger(), "CREATEMETA T Customer ON VFRAG WHERE id:int name:str rank:int", db)
	ProcessCreateMeta(testLogger(), "CREATEMETA V node0.c1 ON Customer WHERE id name", db)
	ProcessCreateMeta(testLogger(), "CREATEMETA V node1.c2 ON Customer WHERE id rank", db)

	tm, _ := db.Table("Customer")
	require.Len(t, tm.VFrags, 2)
	require.Equal(t, "id", tm.JoinColumn())
}

func TestProcessCreateMetaMalformedIgnored(t *testing.T) {
	db := NewDatabaseMeta()
	ProcessCreateMeta(testLogger(), "CREATEMETA T", db)
	ProcessCreateMeta(testLogger(), "not a ddl line at all", db)
	require.Empty(t, db.Tables)
}

func TestParseCreateTable(t *testing.T) {
	db := NewDatabaseMeta()
	stmt := strJoin(
		"CREATEMETA T Publisher ON HFRAG WHERE id:int name:str nation:str",
		"CREATEMETA H node0.p1 ON Publisher WHERE id < 100000",
		"CREATEMETA H node1.p2 ON Publisher WHERE id >= 100000 AND id < 104000",
	)
	siteSQL := ParseCreateTable(testLogger(), stmt, db)
	require.Contains(t, siteSQL["node0"], "CREATE TABLE p1")
	require.Contains(t, siteSQL["node1"], "CREATE TABLE p2")
	require.Contains(t, siteSQL["node0"], "id INTEGER")
	require.Contains(t, siteSQL["node0"], "nation TEXT")
}

func strJoin(lines ...string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "|" + l
	}
	return out
}
