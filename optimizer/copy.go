package optimizer

import (
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/sqltypes"
)

// Copy produces a fresh plan tree with Skipped nodes removed entirely
// (their effect is already baked into the ReadTable leaves below) and
// disabled NJoin/Union children dropped. An NJoin left with at most one
// enabled child, or a Union left with exactly one, collapses to that
// child (wrapped in a Rename when retag_as was set); see copyNJoin and
// copyUnion (spec §4.3's post-pass).
func Copy(node plan.Node) plan.Node {
	switch n := node.(type) {
	case *plan.Projection:
		if n.Skipped() {
			return Copy(n.Child)
		}
		cp := plan.NewProjection(append([]sqltypes.Column{}, n.Cols...), Copy(n.Child))
		cp.SetDisabled(n.Disabled())
		return cp
	case *plan.Selection:
		if n.Skipped() {
			return Copy(n.Child)
		}
		cp := plan.NewSelection(append([]sqltypes.Predicate{}, n.Preds...), Copy(n.Child))
		cp.SetDisabled(n.Disabled())
		return cp
	case *plan.Rename:
		cp := plan.NewRename(n.NewTable, Copy(n.Child))
		cp.SetDisabled(n.Disabled())
		return cp
	case *plan.ReadTable:
		cp := plan.NewReadTable(n.Site, n.FragName, n.OrigTable)
		cp.AddCols(n.Cols)
		cp.AddPreds(n.Preds)
		cp.SetDisabled(n.Disabled())
		return cp
	case *plan.NJoin:
		return copyNJoin(n)
	case *plan.Union:
		return copyUnion(n)
	default:
		return nil
	}
}

// copyNJoin mirrors the original prototype's NJoinNode::copy: an NJoin
// with at most one non-disabled child collapses to that child (or, if
// every child is disabled, to its first child regardless), wrapped in a
// Rename when retag_as was set.
func copyNJoin(n *plan.NJoin) plan.Node {
	enabled := enabledChildren(n.Children)
	if len(enabled) <= 1 {
		return collapseTo(firstOr(enabled, n.Children), n.RetagAs)
	}

	children := make([]plan.Node, len(enabled))
	for i, c := range enabled {
		children[i] = Copy(c)
	}
	cp := plan.NewNJoin(append([]sqltypes.Column{}, n.JoinCols...), children...)
	cp.RetagAs = n.RetagAs
	cp.SetDisabled(n.Disabled())
	return cp
}

// copyUnion mirrors UnionNode::copy: a Union collapses to its single
// enabled child (wrapped in a Rename when retag_as was set) only when
// exactly one child is enabled; zero or many children instead produce a
// (possibly childless, possibly disabled) Union carrying retag_as as a
// field, since execution applies it directly to a surviving Union.
func copyUnion(n *plan.Union) plan.Node {
	enabled := enabledChildren(n.Children)
	if len(enabled) == 1 {
		return collapseTo(enabled[0], n.RetagAs)
	}

	children := make([]plan.Node, len(enabled))
	for i, c := range enabled {
		children[i] = Copy(c)
	}
	cp := plan.NewUnion(children...)
	cp.RetagAs = n.RetagAs
	cp.SetDisabled(n.Disabled())
	return cp
}

func enabledChildren(children []plan.Node) []plan.Node {
	var out []plan.Node
	for _, c := range children {
		if !c.Disabled() {
			out = append(out, c)
		}
	}
	return out
}

func firstOr(enabled, all []plan.Node) plan.Node {
	if len(enabled) == 1 {
		return enabled[0]
	}
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func collapseTo(child plan.Node, retagAs string) plan.Node {
	cp := Copy(child)
	if retagAs == "" {
		return cp
	}
	return plan.NewRename(retagAs, cp)
}
