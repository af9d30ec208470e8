package frontend

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/catalog"
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

func TestBuildSelectStmtExplicitColumns(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int name:str")

	stmt, err := BuildSelectStmt("SELECT id, name FROM Customer WHERE id = 1", db)
	require.NoError(t, err)
	require.Equal(t, []string{"Customer"}, stmt.Tables)
	require.Equal(t, []sqltypes.Column{"Customer.id", "Customer.name"}, stmt.ProjectedCols)
	require.Len(t, stmt.FilterPreds, 1)
	require.Equal(t, sqltypes.Column("Customer.id"), stmt.FilterPreds[0].Left)
	require.Equal(t, sqltypes.EQ, stmt.FilterPreds[0].Op)
	require.Empty(t, stmt.JoinPreds)
}

func TestBuildSelectStmtStarExpansion(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int name:str")

	stmt, err := BuildSelectStmt("SELECT * FROM Customer", db)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"Customer.id", "Customer.name"}, stmt.ProjectedCols)
}

func TestBuildSelectStmtJoinPredicate(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int name:str",
		"CREATEMETA T Orders ON HFRAG WHERE id:int customer_id:int",
	)

	stmt, err := BuildSelectStmt(
		"SELECT Customer.name FROM Customer, Orders WHERE Customer.id = Orders.customer_id AND Orders.id > 0",
		db,
	)
	require.NoError(t, err)
	require.Equal(t, []string{"Customer", "Orders"}, stmt.Tables)
	require.Len(t, stmt.JoinPreds, 1)
	require.True(t, stmt.JoinPreds[0].IsJoin())
	require.Len(t, stmt.FilterPreds, 1)
}

func TestBuildSelectStmtUnqualifiedColumnDefaultsToFirstTable(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int name:str")

	stmt, err := BuildSelectStmt("SELECT name FROM Customer WHERE id = 1", db)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"Customer.name"}, stmt.ProjectedCols)
}
