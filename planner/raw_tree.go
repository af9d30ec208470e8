package planner

import (
	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/frontend"
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/sqlerr"
	"github.com/fragsql/fragsql/sqltypes"
)

// BuildRawTree builds Projection(proj_cols) -> Selection(filter_preds) ->
// <join-spanning-tree>, where the join tree is a DFS over the undirected
// graph of stmt.JoinPreds starting from a table of join-degree <= 1,
// recursively wrapping the current sub-tree with an NJoin against the
// distributed-read subtree of each newly reached table (spec §4.2).
func BuildRawTree(stmt *frontend.SelectStmt, db *catalog.DatabaseMeta) (plan.Node, error) {
	joinTree, err := buildJoinSpanningTree(stmt.Tables, stmt.JoinPreds, db)
	if err != nil {
		return nil, err
	}
	sel := plan.NewSelection(stmt.FilterPreds, joinTree)
	proj := plan.NewProjection(stmt.ProjectedCols, sel)
	return proj, nil
}

type joinEdge struct {
	to   string
	left sqltypes.Column
	rite sqltypes.Column
}

// buildJoinSpanningTree assumes the join graph induced by joinPreds is
// connected across tables (the common case for an inner-join WHERE
// clause); a FROM list naming tables with no connecting join predicate
// is reported as unsupported rather than silently treated as a Cartesian
// product, since neither spec.md nor the original prototype's planner
// describes cross-join semantics for this executor.
func buildJoinSpanningTree(tables []string, joinPreds []sqltypes.Predicate, db *catalog.DatabaseMeta) (plan.Node, error) {
	if len(tables) == 0 {
		return nil, sqlerr.ErrParse.New("no tables to join")
	}

	adj := make(map[string][]joinEdge, len(tables))
	for _, t := range tables {
		adj[t] = nil
	}
	for _, p := range joinPreds {
		lt, rt := p.Left.Table(), p.RightCol.Table()
		adj[lt] = append(adj[lt], joinEdge{to: rt, left: p.Left, rite: p.RightCol})
		adj[rt] = append(adj[rt], joinEdge{to: lt, left: p.RightCol, rite: p.Left})
	}

	start := tables[0]
	for _, t := range tables {
		if len(adj[t]) <= 1 {
			start = t
			break
		}
	}

	visited := make(map[string]bool, len(tables))
	var dfs func(t string) (plan.Node, error)
	dfs = func(t string) (plan.Node, error) {
		visited[t] = true
		node, err := BuildDistributedRead(t, db)
		if err != nil {
			return nil, err
		}
		for _, e := range adj[t] {
			if visited[e.to] {
				continue
			}
			childNode, err := dfs(e.to)
			if err != nil {
				return nil, err
			}
			node = plan.NewNJoin([]sqltypes.Column{e.left, e.rite}, node, childNode)
		}
		return node, nil
	}

	root, err := dfs(start)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if !visited[t] {
			return nil, sqlerr.ErrUnsupported.New("FROM list contains tables with no connecting join predicate: " + t)
		}
	}
	return root, nil
}
