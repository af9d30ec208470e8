package optimizer

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/planner"
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

func TestPushDownAndCopyPrunesContradictingHFrag(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int nation:str",
		"CREATEMETA H node0.cust_us ON Customer WHERE nation = US",
		"CREATEMETA H node1.cust_eu ON Customer WHERE nation = EU",
	)

	node, err := planner.BuildDistributedRead("Customer", db)
	require.NoError(t, err)

	required := sqltypes.NewColumnSet("Customer.id", "Customer.nation")
	inherited := []sqltypes.Predicate{
		{Left: "Customer.nation", Op: sqltypes.EQ, Right: sqltypes.Str("US")},
	}
	PushDown(node, required, inherited, "", db)

	u := node.(*plan.Union)
	require.False(t, u.Children[0].Disabled())
	require.True(t, u.Children[1].Disabled())
	require.False(t, u.Disabled())

	copied := Copy(node)
	rename, ok := copied.(*plan.Rename)
	require.True(t, ok)
	require.Equal(t, "Customer", rename.NewTable)

	rt, ok := rename.Child.(*plan.ReadTable)
	require.True(t, ok)
	require.Equal(t, "node0", rt.Site)
}

func TestPushDownVFragRestrictsFragmentColumns(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Wide ON VFRAG WHERE id:int a:str b:str",
		"CREATEMETA V node0.wide1 ON Wide WHERE id a",
		"CREATEMETA V node1.wide2 ON Wide WHERE id b",
	)

	node, err := planner.BuildDistributedRead("Wide", db)
	require.NoError(t, err)

	required := sqltypes.NewColumnSet("Wide.id", "Wide.a")
	PushDown(node, required, nil, "", db)

	nj := node.(*plan.NJoin)
	proj0 := nj.Children[0].(*plan.Projection)
	require.Equal(t, []sqltypes.Column{"wide1.id", "wide1.a"}, proj0.Cols)

	proj1 := nj.Children[1].(*plan.Projection)
	require.Equal(t, []sqltypes.Column{"wide2.id"}, proj1.Cols)
}

func TestOptimizeExecNodeSingleSiteAgrees(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int name:str",
		"CREATEMETA H node0.cust ON Customer WHERE id > 0",
		"CREATEMETA T Orders ON HFRAG WHERE id:int customer_id:int",
		"CREATEMETA H node0.ord ON Orders WHERE id > 0",
	)

	joinCols := []sqltypes.Column{"Customer.id", "Orders.customer_id"}
	custRead, err := planner.BuildDistributedRead("Customer", db)
	require.NoError(t, err)
	ordRead, err := planner.BuildDistributedRead("Orders", db)
	require.NoError(t, err)
	nj := plan.NewNJoin(joinCols, custRead, ordRead)

	PushDown(nj, sqltypes.NewColumnSet("Customer.id", "Orders.customer_id"), nil, "", db)
	copied := Copy(nj)
	OptimizeExecNode(copied)

	require.Equal(t, "node0", copied.ExecSite())
}

func TestOptimizeExecNodeMultiSiteUnpinned(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int nation:str",
		"CREATEMETA H node0.cust_us ON Customer WHERE nation = US",
		"CREATEMETA H node1.cust_eu ON Customer WHERE nation = EU",
	)

	node, err := planner.BuildDistributedRead("Customer", db)
	require.NoError(t, err)
	PushDown(node, sqltypes.NewColumnSet("Customer.id", "Customer.nation"), nil, "", db)
	copied := Copy(node)
	OptimizeExecNode(copied)

	require.Equal(t, "", copied.ExecSite())
}
