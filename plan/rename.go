package plan

// Rename rewrites its child's output header, replacing every column's
// qualifier with NewTable. Per spec §9 Open Questions, Rename is never
// constructed by the raw-tree builder (planner); it exists only as a
// wrapper synthesized by optimizer.Copy when an NJoin/Union carrying
// RetagAs collapses to a single surviving child.
type Rename struct {
	Base
	NewTable string
	Child    Node
}

// NewRename builds a Rename wrapping child under newTable.
func NewRename(newTable string, child Node) *Rename {
	return &Rename{NewTable: newTable, Child: child}
}
