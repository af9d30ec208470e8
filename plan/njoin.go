package plan

import "github.com/fragsql/fragsql/sqltypes"

// NJoin is an n-ary natural join over JoinCols: its i-th entry is the join
// column as seen from Children[i]'s own qualifier. RetagAs, if non-empty,
// means the joined result's columns should be re-qualified with that
// logical table name once combined (used when this NJoin is itself the
// distributed-read subtree for a VFRAG table, hiding fragment names from
// higher levels).
type NJoin struct {
	Base
	JoinCols []sqltypes.Column
	Children []Node
	RetagAs  string
}

// NewNJoin builds an NJoin over children with the given per-child join
// columns.
func NewNJoin(joinCols []sqltypes.Column, children ...Node) *NJoin {
	return &NJoin{
		JoinCols: append([]sqltypes.Column{}, joinCols...),
		Children: children,
	}
}
