package frontend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/sqltypes"
)

func TestBuildInsertStmtTypesLiterals(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int name:str")

	stmt, err := BuildInsertStmt("INSERT INTO Customer (id, name) VALUES (1, 'alice')", db)
	require.NoError(t, err)
	require.Equal(t, "Customer", stmt.Table)
	require.Equal(t, []sqltypes.Column{"Customer.id", "Customer.name"}, stmt.Cols)
	require.Equal(t, [][]sqltypes.Value{{sqltypes.Int(1), sqltypes.Str("alice")}}, stmt.Rows)
}

func TestBuildInsertStmtDefaultsToCatalogColumnOrder(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int name:str")

	stmt, err := BuildInsertStmt("INSERT INTO Customer VALUES (2, 'bob')", db)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"Customer.id", "Customer.name"}, stmt.Cols)
}

func TestBuildDeleteStmt(t *testing.T) {
	stmt, err := BuildDeleteStmt("DELETE FROM Customer")
	require.NoError(t, err)
	require.Equal(t, "Customer", stmt.Table)
}
