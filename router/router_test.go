package router

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/frontend"
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

func TestRouteInsertHFragFirstMatchWins(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int nation:str",
		"CREATEMETA H node0.cust_us ON Customer WHERE nation = US",
		"CREATEMETA H node1.cust_eu ON Customer WHERE nation = EU",
	)

	stmt := &frontend.InsertStmt{
		Table: "Customer",
		Cols:  []sqltypes.Column{"Customer.id", "Customer.nation"},
		Rows: [][]sqltypes.Value{
			{sqltypes.Int(1), sqltypes.Str("US")},
			{sqltypes.Int(2), sqltypes.Str("EU")},
			{sqltypes.Int(3), sqltypes.Str("JP")},
		},
	}

	out, err := RouteInsert(stmt, db)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "cust_us", out[0].FragName)
	require.Equal(t, [][]sqltypes.Value{{sqltypes.Int(1), sqltypes.Str("US")}}, out[0].Rows)
	require.Equal(t, "cust_eu", out[1].FragName)
	require.Equal(t, [][]sqltypes.Value{{sqltypes.Int(2), sqltypes.Str("EU")}}, out[1].Rows)
}

func TestRouteInsertVFragEveryFragmentGetsEveryRow(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Wide ON VFRAG WHERE id:int a:str b:str",
		"CREATEMETA V node0.wide1 ON Wide WHERE id a",
		"CREATEMETA V node1.wide2 ON Wide WHERE id b",
	)

	stmt := &frontend.InsertStmt{
		Table: "Wide",
		Cols:  []sqltypes.Column{"Wide.id", "Wide.a", "Wide.b"},
		Rows: [][]sqltypes.Value{
			{sqltypes.Int(1), sqltypes.Str("hello"), sqltypes.Str("world")},
		},
	}

	out, err := RouteInsert(stmt, db)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, []string{"id", "a"}, out[0].Cols)
	require.Equal(t, [][]sqltypes.Value{{sqltypes.Int(1), sqltypes.Str("hello")}}, out[0].Rows)
	require.Equal(t, []string{"id", "b"}, out[1].Cols)
	require.Equal(t, [][]sqltypes.Value{{sqltypes.Int(1), sqltypes.Str("world")}}, out[1].Rows)
}

func TestInsertFromTSVTypesCellsAndPadsMismatchedRows(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int nation:str")

	body := "1\tUS\n2\tEU\textra\n"
	stmt, err := InsertFromTSV("Customer", strings.NewReader(body), db)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"Customer.id", "Customer.nation"}, stmt.Cols)
	require.Equal(t, [][]sqltypes.Value{
		{sqltypes.Int(1), sqltypes.Str("US")},
		{{}, {}},
	}, stmt.Rows)
}
