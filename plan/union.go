package plan

// Union concatenates the rows of its Children, which must share a common
// header shape. RetagAs, if non-empty, means the combined header should be
// re-qualified with that logical table name (the HFRAG distributed-read
// subtree always sets this to the logical table it replaces).
type Union struct {
	Base
	Children []Node
	RetagAs  string
}

// NewUnion builds a Union over children.
func NewUnion(children ...Node) *Union {
	return &Union{Children: children}
}
