package plan

import "github.com/fragsql/fragsql/sqltypes"

// Projection restricts its child's output to Cols, in order.
type Projection struct {
	Base
	Cols  []sqltypes.Column
	Child Node
}

// NewProjection builds a Projection over child selecting cols.
func NewProjection(cols []sqltypes.Column, child Node) *Projection {
	return &Projection{Cols: append([]sqltypes.Column{}, cols...), Child: child}
}

// HasCol reports whether name is one of the projection's columns,
// compared by exact qualified equality.
func (p *Projection) HasCol(name sqltypes.Column) bool {
	for _, c := range p.Cols {
		if c == name {
			return true
		}
	}
	return false
}
