// Package planner implements C3: converting a normalized SelectStmt plus
// the catalog into a raw (unoptimized) algebra tree, with a distributed
// read sub-tree substituted for each referenced logical table (spec
// §4.2).
package planner

import (
	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/sqlerr"
	"github.com/fragsql/fragsql/sqltypes"
)

// BuildDistributedRead returns the fragment-aware subtree that replaces
// a single reference to logical table name.
func BuildDistributedRead(name string, db *catalog.DatabaseMeta) (plan.Node, error) {
	tm, ok := db.Table(name)
	if !ok {
		return nil, sqlerr.ErrUnknownTable.New(name)
	}
	switch tm.FragType {
	case catalog.HFRAG:
		return buildHFragRead(tm)
	case catalog.VFRAG:
		return buildVFragRead(tm)
	default:
		return nil, sqlerr.ErrUnknownTable.New(name)
	}
}

// buildHFragRead unions one branch per (site, frag): Projection(all
// table columns, fragment-qualified) -> Selection(fragment predicates,
// fragment-qualified) -> ReadTable(site.frag). The union is tagged
// retag_as = the logical table name it replaces.
func buildHFragRead(tm *catalog.TableMeta) (plan.Node, error) {
	branches := make([]plan.Node, 0, len(tm.HFrags))
	for _, hf := range tm.HFrags {
		rt := plan.NewReadTable(hf.Site, hf.FragName, tm.Name)
		preds := make([]sqltypes.Predicate, len(hf.Preds))
		for i, p := range hf.Preds {
			preds[i] = p.Requalify(hf.FragName)
		}
		sel := plan.NewSelection(preds, rt)
		proj := plan.NewProjection(qualifiedCols(tm.Columns, hf.FragName), sel)
		branches = append(branches, proj)
	}
	u := plan.NewUnion(branches...)
	u.RetagAs = tm.Name
	return u, nil
}

// buildVFragRead n-ary joins one branch per (site, frag) on the shared
// join column: Projection(fragment columns, fragment-qualified) ->
// Selection(empty) -> ReadTable(site.frag). The join is tagged
// retag_as = the logical table name it replaces.
func buildVFragRead(tm *catalog.TableMeta) (plan.Node, error) {
	joinCol := tm.JoinColumn()
	if joinCol == "" {
		return nil, sqlerr.ErrUnknownTable.New(tm.Name + " has no common VFRAG join column")
	}

	branches := make([]plan.Node, 0, len(tm.VFrags))
	joinCols := make([]sqltypes.Column, 0, len(tm.VFrags))
	for _, vf := range tm.VFrags {
		rt := plan.NewReadTable(vf.Site, vf.FragName, tm.Name)
		sel := plan.NewSelection(nil, rt)
		proj := plan.NewProjection(qualifiedCols(vf.Cols, vf.FragName), sel)
		branches = append(branches, proj)
		joinCols = append(joinCols, sqltypes.NewColumn(vf.FragName, joinCol))
	}
	nj := plan.NewNJoin(joinCols, branches...)
	nj.RetagAs = tm.Name
	return nj, nil
}

func qualifiedCols(cols []string, table string) []sqltypes.Column {
	out := make([]sqltypes.Column, len(cols))
	for i, c := range cols {
		out[i] = sqltypes.NewColumn(table, c)
	}
	return out
}
