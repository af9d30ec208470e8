package optimizer

import "github.com/fragsql/fragsql/plan"

// OptimizeExecNode labels the already-copied tree with exec_site hints
// (spec §4.3): a ReadTable is already pinned to its site at construction;
// Projection/Selection/Rename inherit their child's site; NJoin/Union
// inherit the site only when every child agrees, otherwise remain
// unpinned (meaning "executed at the coordinator").
func OptimizeExecNode(node plan.Node) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *plan.Projection:
		OptimizeExecNode(n.Child)
		n.SetExecSite(n.Child.ExecSite())
	case *plan.Selection:
		OptimizeExecNode(n.Child)
		n.SetExecSite(n.Child.ExecSite())
	case *plan.Rename:
		OptimizeExecNode(n.Child)
		n.SetExecSite(n.Child.ExecSite())
	case *plan.ReadTable:
		// Already pinned to its site by plan.NewReadTable.
	case *plan.NJoin:
		n.SetExecSite(execSiteOfChildren(n.Children))
	case *plan.Union:
		n.SetExecSite(execSiteOfChildren(n.Children))
	}
}

func execSiteOfChildren(children []plan.Node) string {
	var site string
	agree := true
	for i, c := range children {
		OptimizeExecNode(c)
		if i == 0 {
			site = c.ExecSite()
		} else if c.ExecSite() != site {
			agree = false
		}
	}
	if !agree {
		return ""
	}
	return site
}
