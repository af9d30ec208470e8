package plan

import "github.com/fragsql/fragsql/sqltypes"

// Selection filters its child's rows by the conjunction of Preds.
type Selection struct {
	Base
	Preds []sqltypes.Predicate
	Child Node
}

// NewSelection builds a Selection over child with preds.
func NewSelection(preds []sqltypes.Predicate, child Node) *Selection {
	return &Selection{Preds: append([]sqltypes.Predicate{}, preds...), Child: child}
}
