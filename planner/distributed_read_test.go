package planner

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/sqltypes"
)

func testDB(t *testing.T, lines ...string) *catalog.DatabaseMeta {
	t.Helper()
	log := logrus.NewEntry(logrus.New())
	db := catalog.NewDatabaseMeta()
	for _, l := range lines {
		catalog.ProcessCreateMeta(log, l, db)
	}
	return db
}

func TestBuildDistributedReadHFrag(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int nation:str",
		"CREATEMETA H node0.cust_us ON Customer WHERE nation = US",
		"CREATEMETA H node1.cust_eu ON Customer WHERE nation = EU",
	)

	node, err := BuildDistributedRead("Customer", db)
	require.NoError(t, err)

	u, ok := node.(*plan.Union)
	require.True(t, ok)
	require.Equal(t, "Customer", u.RetagAs)
	require.Len(t, u.Children, 2)

	proj, ok := u.Children[0].(*plan.Projection)
	require.True(t, ok)
	require.Equal(t, []string{"cust_us.id", "cust_us.nation"}, colStrings(proj.Cols))

	sel, ok := proj.Child.(*plan.Selection)
	require.True(t, ok)
	require.Len(t, sel.Preds, 1)
	require.Equal(t, "cust_us.nation", string(sel.Preds[0].Left))

	rt, ok := sel.Child.(*plan.ReadTable)
	require.True(t, ok)
	require.Equal(t, "node0", rt.Site)
	require.Equal(t, "cust_us", rt.FragName)
	require.Equal(t, "Customer", rt.OrigTable)
}

func TestBuildDistributedReadVFrag(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Wide ON VFRAG WHERE id:int a:str b:str",
		"CREATEMETA V node0.wide1 ON Wide WHERE id a",
		"CREATEMETA V node1.wide2 ON Wide WHERE id b",
	)

	node, err := BuildDistributedRead("Wide", db)
	require.NoError(t, err)

	nj, ok := node.(*plan.NJoin)
	require.True(t, ok)
	require.Equal(t, "Wide", nj.RetagAs)
	require.Equal(t, []string{"wide1.id", "wide2.id"}, colStrings(nj.JoinCols))
	require.Len(t, nj.Children, 2)
}

func colStrings(cols []sqltypes.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}
