// Package optimizer implements C4: the push-down/pruning optimizer that
// specializes a raw plan tree per fragment (spec §4.3). PushDown rewrites
// a tree in place; Copy then produces the trimmed, executable tree; and
// OptimizeExecNode labels that trimmed tree with exec_site hints.
package optimizer

import (
	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/sqltypes"
)

// PushDown propagates requiredCols and inheritedPreds downward through
// node, specializing each ReadTable leaf and marking provably-empty
// subtrees disabled. Call it once on the root of a raw tree with
// requiredCols and inheritedPreds both nil and defaultTable "".
func PushDown(node plan.Node, requiredCols sqltypes.ColumnSet, inheritedPreds []sqltypes.Predicate, defaultTable string, db *catalog.DatabaseMeta) {
	switch n := node.(type) {
	case *plan.Projection:
		pushDownProjection(n, requiredCols, inheritedPreds, defaultTable, db)
	case *plan.Selection:
		pushDownSelection(n, requiredCols, inheritedPreds, defaultTable, db)
	case *plan.NJoin:
		pushDownNJoin(n, requiredCols, inheritedPreds, defaultTable, db)
	case *plan.Union:
		pushDownUnion(n, requiredCols, inheritedPreds, defaultTable, db)
	case *plan.ReadTable:
		pushDownReadTable(n, requiredCols, inheritedPreds, defaultTable, db)
	}
}

func pushDownProjection(p *plan.Projection, requiredCols sqltypes.ColumnSet, inheritedPreds []sqltypes.Predicate, defaultTable string, db *catalog.DatabaseMeta) {
	if len(requiredCols) > 0 {
		kept := make([]sqltypes.Column, 0, len(p.Cols))
		for _, c := range p.Cols {
			if colRequired(c, requiredCols, defaultTable) {
				kept = append(kept, c)
			}
		}
		p.Cols = kept
	}
	PushDown(p.Child, sqltypes.NewColumnSet(p.Cols...), inheritedPreds, defaultTable, db)
	p.SetDisabled(p.Child.Disabled())
}

// colRequired reports whether c (one of a Projection's own columns)
// survives intersection with requiredCols: a literal match when
// defaultTable is empty (both sides share the same qualifier domain), or
// an unqualified-name match when defaultTable is set (c is qualified by
// a fragment name while requiredCols still carries the logical table's
// qualifier, translated at the retag boundary that set defaultTable).
func colRequired(c sqltypes.Column, requiredCols sqltypes.ColumnSet, defaultTable string) bool {
	if defaultTable == "" {
		return requiredCols.Has(c)
	}
	for rc := range requiredCols {
		if rc.Unqualified() == c.Unqualified() {
			return true
		}
	}
	return false
}

func pushDownSelection(s *plan.Selection, requiredCols sqltypes.ColumnSet, inheritedPreds []sqltypes.Predicate, defaultTable string, db *catalog.DatabaseMeta) {
	merged := make([]sqltypes.Predicate, 0, len(s.Preds)+len(inheritedPreds))
	merged = append(merged, s.Preds...)
	merged = append(merged, inheritedPreds...)

	PushDown(s.Child, requiredCols, merged, defaultTable, db)
	s.SetSkipped(true)
	s.SetDisabled(s.Child.Disabled())
}

func pushDownNJoin(n *plan.NJoin, requiredCols sqltypes.ColumnSet, inheritedPreds []sqltypes.Predicate, defaultTable string, db *catalog.DatabaseMeta) {
	if n.RetagAs == "" {
		next := cloneSet(requiredCols)
		for _, c := range n.JoinCols {
			next.Add(c)
		}
		anyDisabled := false
		for _, child := range n.Children {
			PushDown(child, next, inheritedPreds, defaultTable, db)
			if child.Disabled() {
				anyDisabled = true
			}
		}
		n.SetDisabled(anyDisabled)
		return
	}

	anyDisabled := false
	for _, child := range n.Children {
		crossRetagBoundary(child, n.RetagAs, requiredCols, inheritedPreds, db)
		if child.Disabled() {
			anyDisabled = true
		}
	}
	n.SetDisabled(anyDisabled)
}

func pushDownUnion(u *plan.Union, requiredCols sqltypes.ColumnSet, inheritedPreds []sqltypes.Predicate, defaultTable string, db *catalog.DatabaseMeta) {
	if u.RetagAs == "" {
		allDisabled := true
		for _, child := range u.Children {
			PushDown(child, requiredCols, inheritedPreds, defaultTable, db)
			if !child.Disabled() {
				allDisabled = false
			}
		}
		u.SetDisabled(allDisabled)
		return
	}

	allDisabled := true
	for _, child := range u.Children {
		crossRetagBoundary(child, u.RetagAs, requiredCols, inheritedPreds, db)
		if !child.Disabled() {
			allDisabled = false
		}
	}
	u.SetDisabled(allDisabled)
}

// crossRetagBoundary handles the "NJoin/Union with retag_as = T" rule
// shared by both node types: child is a Projection whose own columns are
// qualified by the fragment's new_table; requiredCols/inheritedPreds,
// still qualified by T, are translated into the fragment's qualifier
// (dropping references to any other table) before recursing, and the
// boundary Projection itself is marked skipped once done.
func crossRetagBoundary(child plan.Node, retagAs string, requiredCols sqltypes.ColumnSet, inheritedPreds []sqltypes.Predicate, db *catalog.DatabaseMeta) {
	proj, ok := child.(*plan.Projection)
	if !ok || len(proj.Cols) == 0 {
		return
	}
	newTable := proj.Cols[0].Table()

	translatedCols := sqltypes.ColumnSet{}
	for c := range requiredCols {
		if c.Table() == retagAs {
			translatedCols.Add(c.Requalify(newTable))
		}
	}
	var translatedPreds []sqltypes.Predicate
	for _, p := range inheritedPreds {
		if p.Left.Table() == retagAs {
			translatedPreds = append(translatedPreds, p.Requalify(newTable))
		}
	}

	PushDown(proj, translatedCols, translatedPreds, newTable, db)
	proj.SetSkipped(true)
}

func cloneSet(s sqltypes.ColumnSet) sqltypes.ColumnSet {
	out := make(sqltypes.ColumnSet, len(s))
	for c := range s {
		out.Add(c)
	}
	return out
}

func pushDownReadTable(rt *plan.ReadTable, requiredCols sqltypes.ColumnSet, inheritedPreds []sqltypes.Predicate, defaultTable string, db *catalog.DatabaseMeta) {
	rt.AddCols(requiredCols.Slice())

	tm, ok := db.Table(rt.OrigTable)
	if !ok {
		rt.SetDisabled(true)
		return
	}

	var accepted []sqltypes.Predicate
	if tm.FragType == catalog.VFRAG {
		fragCols := fragmentColumnSet(tm, rt.FragName)
		for _, p := range inheritedPreds {
			if fragCols[p.Left.Unqualified()] {
				accepted = append(accepted, p)
			}
		}
	} else {
		accepted = append(accepted, inheritedPreds...)
	}
	rt.AddPreds(accepted)

	rt.SetDisabled(hasContradiction(tm, rt.Preds))
}

func fragmentColumnSet(tm *catalog.TableMeta, fragName string) map[string]bool {
	for _, vf := range tm.VFrags {
		if vf.FragName == fragName {
			set := make(map[string]bool, len(vf.Cols))
			for _, c := range vf.Cols {
				set[c] = true
			}
			return set
		}
	}
	return nil
}
