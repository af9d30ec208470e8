package rowexec

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/optimizer"
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

// fakeCaller serves canned rows per frag name, ignoring the generated SQL
// text beyond routing on which fragment it targets.
type fakeCaller struct {
	bySite map[string]map[string][][]string
	header map[string][]string
}

func (f *fakeCaller) ExecSQL(_ context.Context, site, sql string) ([]string, [][]string, error) {
	frag := fragNameFromSQL(sql)
	return f.header[frag], f.bySite[site][frag], nil
}

// fragNameFromSQL extracts the FROM clause's fragment name from the
// generated "SELECT ... FROM <frag> WHERE ..." text.
func fragNameFromSQL(sql string) string {
	const marker = " FROM "
	i := indexAfter(sql, marker)
	j := i
	for j < len(sql) && sql[j] != ' ' {
		j++
	}
	return sql[i:j]
}

func indexAfter(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i + len(sub)
		}
	}
	return -1
}

func TestExecuteReadTable(t *testing.T) {
	db := testDB(t, "CREATEMETA T Customer ON HFRAG WHERE id:int name:str")
	rt := plan.NewReadTable("node0", "cust", "Customer")
	rt.AddCols([]sqltypes.Column{"Customer.id", "Customer.name"})

	caller := &fakeCaller{
		header: map[string][]string{"cust": {"cust.id", "cust.name"}},
		bySite: map[string]map[string][][]string{
			"node0": {"cust": {{"1", "alice"}, {"2", "bob"}}},
		},
	}

	res, err := Execute(context.Background(), rt, db, caller)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"cust.id", "cust.name"}, res.Header)
	require.Equal(t, [][]sqltypes.Value{
		{sqltypes.Int(1), sqltypes.Str("alice")},
		{sqltypes.Int(2), sqltypes.Str("bob")},
	}, res.Rows)
}

func TestExecuteDisabledProjectionReturnsHeaderOnly(t *testing.T) {
	p := plan.NewProjection([]sqltypes.Column{"Customer.id"}, nil)
	p.SetDisabled(true)

	res, err := Execute(context.Background(), p, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"Customer.id"}, res.Header)
	require.Empty(t, res.Rows)
}

func TestExecuteDisabledReadTableReturnsNothing(t *testing.T) {
	rt := plan.NewReadTable("node0", "cust", "Customer")
	rt.SetDisabled(true)

	res, err := Execute(context.Background(), rt, nil, nil)
	require.NoError(t, err)
	require.Empty(t, res.Header)
	require.Empty(t, res.Rows)
}

func TestExecuteUnionAcrossFragmentsRealignsAndRetags(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Customer ON HFRAG WHERE id:int nation:str",
		"CREATEMETA H node0.cust_us ON Customer WHERE nation = US",
		"CREATEMETA H node1.cust_eu ON Customer WHERE nation = EU",
	)

	node, err := planner.BuildDistributedRead("Customer", db)
	require.NoError(t, err)
	optimizer.PushDown(node, sqltypes.NewColumnSet("Customer.id", "Customer.nation"), nil, "", db)
	copied := optimizer.Copy(node)
	optimizer.OptimizeExecNode(copied)

	u, ok := copied.(*plan.Union)
	require.True(t, ok)

	caller := &fakeCaller{
		header: map[string][]string{
			"cust_us": {"cust_us.id", "cust_us.nation"},
			"cust_eu": {"cust_eu.nation", "cust_eu.id"},
		},
		bySite: map[string]map[string][][]string{
			"node0": {"cust_us": {{"1", "US"}}},
			"node1": {"cust_eu": {{"EU", "2"}}},
		},
	}

	res, err := Execute(context.Background(), u, db, caller)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"Customer.id", "Customer.nation"}, res.Header)
	require.ElementsMatch(t, [][]sqltypes.Value{
		{sqltypes.Int(1), sqltypes.Str("US")},
		{sqltypes.Int(2), sqltypes.Str("EU")},
	}, res.Rows)
}

func TestExecuteNJoinMatchesKeysAcrossChildren(t *testing.T) {
	db := testDB(t,
		"CREATEMETA T Wide ON VFRAG WHERE id:int a:str b:str",
		"CREATEMETA V node0.wide1 ON Wide WHERE id a",
		"CREATEMETA V node1.wide2 ON Wide WHERE id b",
	)

	node, err := planner.BuildDistributedRead("Wide", db)
	require.NoError(t, err)
	optimizer.PushDown(node, sqltypes.NewColumnSet("Wide.id", "Wide.a", "Wide.b"), nil, "", db)
	copied := optimizer.Copy(node)
	optimizer.OptimizeExecNode(copied)

	nj, ok := copied.(*plan.NJoin)
	require.True(t, ok)

	caller := &fakeCaller{
		header: map[string][]string{
			"wide1": {"wide1.id", "wide1.a"},
			"wide2": {"wide2.id", "wide2.b"},
		},
		bySite: map[string]map[string][][]string{
			"node0": {"wide1": {{"1", "hello"}, {"2", "world"}}},
			"node1": {"wide2": {{"1", "foo"}, {"3", "bar"}}},
		},
	}

	res, err := Execute(context.Background(), nj, db, caller)
	require.NoError(t, err)
	require.Equal(t, []sqltypes.Column{"Wide.id", "Wide.a", "Wide.b"}, res.Header)
	require.Equal(t, [][]sqltypes.Value{
		{sqltypes.Int(1), sqltypes.Str("hello"), sqltypes.Str("foo")},
	}, res.Rows)
}
