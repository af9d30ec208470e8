package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/frontend"
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/sqltypes"
)

func TestBuildRawTreeSingleTable(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int name:str")
	stmt := &frontend.SelectStmt{
		Tables:        []string{"Customer"},
		ProjectedCols: []sqltypes.Column{"Customer.id"},
		FilterPreds:   []sqltypes.Predicate{{Left: "Customer.id", Op: sqltypes.EQ, Right: sqltypes.Int(1)}},
	}

	node, err := BuildRawTree(stmt, db)
	require.NoError(t, err)

	proj, ok := node.(*plan.Projection)
	require.True(t, ok)
	require.Equal(t, []sqltypes.Column{"Customer.id"}, proj.Cols)

	sel, ok := proj.Child.(*plan.Selection)
	require.True(t, ok)
	require.Len(t, sel.Preds, 1)

	_, ok = sel.Child.(*plan.Union)
	require.True(t, ok)
}

func TestBuildRawTreeTwoTableJoin(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int name:str",
		"CREATEMETA H node0.cust ON Customer WHERE id > 0",
		"CREATEMETA T Orders ON HFRAG WHERE id:int customer_id:int",
		"CREATEMETA H node0.ord ON Orders WHERE id > 0",
	)
	stmt := &frontend.SelectStmt{
		Tables:        []string{"Customer", "Orders"},
		ProjectedCols: []sqltypes.Column{"Customer.name"},
		JoinPreds: []sqltypes.Predicate{
			{Left: "Customer.id", Op: sqltypes.EQ, RightCol: "Orders.customer_id"},
		},
	}

	node, err := BuildRawTree(stmt, db)
	require.NoError(t, err)

	proj := node.(*plan.Projection)
	sel := proj.Child.(*plan.Selection)
	nj, ok := sel.Child.(*plan.NJoin)
	require.True(t, ok)
	require.Len(t, nj.Children, 2)
	require.Equal(t, []sqltypes.Column{"Customer.id", "Orders.customer_id"}, nj.JoinCols)
}

func TestBuildRawTreeDisconnectedTablesUnsupported(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int name:str",
		"CREATEMETA H node0.cust ON Customer WHERE id > 0",
		"CREATEMETA T Orders ON HFRAG WHERE id:int customer_id:int",
		"CREATEMETA H node0.ord ON Orders WHERE id > 0",
	)
	stmt := &frontend.SelectStmt{
		Tables:        []string{"Customer", "Orders"},
		ProjectedCols: []sqltypes.Column{"Customer.name"},
	}

	_, err := BuildRawTree(stmt, db)
	require.Error(t, err)
}
