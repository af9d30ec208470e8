package optimizer

import (
	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/sqltypes"
)

// hasContradiction reports whether any pair of preds on the same column
// provably yields zero rows (spec §4.3's ReadTable contradiction check):
// two string-EQ predicates on the same column with different literals,
// or two integer bound predicates whose intersection is an empty
// interval.
func hasContradiction(tm *catalog.TableMeta, preds []sqltypes.Predicate) bool {
	byCol := map[string][]sqltypes.Predicate{}
	for _, p := range preds {
		if p.IsJoin() {
			continue
		}
		col := p.Left.Unqualified()
		byCol[col] = append(byCol[col], p)
	}

	for col, ps := range byCol {
		kind := tm.ColumnType[col]
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				if contradicts(kind, ps[i], ps[j]) {
					return true
				}
			}
		}
	}
	return false
}

func contradicts(kind string, a, b sqltypes.Predicate) bool {
	switch kind {
	case "str":
		return a.Op == sqltypes.EQ && b.Op == sqltypes.EQ && a.Right.S != b.Right.S
	case "int":
		return intervalContradiction(a, b)
	default:
		return false
	}
}

type bound struct {
	val   int64
	incl  bool
	valid bool
}

// upperBound reports the value a predicate caps its column's range from
// above (<=, <, or = all behave as an upper bound).
func upperBound(p sqltypes.Predicate) bound {
	switch p.Op {
	case sqltypes.EQ:
		return bound{val: p.Right.I, incl: true, valid: true}
	case sqltypes.LT:
		return bound{val: p.Right.I, incl: false, valid: true}
	case sqltypes.LE:
		return bound{val: p.Right.I, incl: true, valid: true}
	default:
		return bound{}
	}
}

// lowerBound reports the value a predicate floors its column's range at
// (>=, >, or = all behave as a lower bound).
func lowerBound(p sqltypes.Predicate) bound {
	switch p.Op {
	case sqltypes.EQ:
		return bound{val: p.Right.I, incl: true, valid: true}
	case sqltypes.GT:
		return bound{val: p.Right.I, incl: false, valid: true}
	case sqltypes.GE:
		return bound{val: p.Right.I, incl: true, valid: true}
	default:
		return bound{}
	}
}

func intervalEmpty(hi, lo bound) bool {
	if !hi.valid || !lo.valid {
		return false
	}
	if hi.val < lo.val {
		return true
	}
	return hi.val == lo.val && !(hi.incl && lo.incl)
}

func intervalContradiction(a, b sqltypes.Predicate) bool {
	if intervalEmpty(upperBound(a), lowerBound(b)) {
		return true
	}
	if intervalEmpty(upperBound(b), lowerBound(a)) {
		return true
	}
	return false
}
