package sqltypes

// CompareOp is one of the six comparison operators a Predicate may use.
type CompareOp int

const (
	EQ CompareOp = iota
	NE
	LT
	LE
	GT
	GE
)

// String renders the operator as it appears in generated SQL text.
func (op CompareOp) String() string {
	switch op {
	case EQ:
		return "="
	case NE:
		return "<>"
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	default:
		return "?"
	}
}

// Eval applies op to the triple-way compare result cmp = Compare(left, right).
func (op CompareOp) Eval(cmp int) bool {
	switch op {
	case EQ:
		return cmp == 0
	case NE:
		return cmp != 0
	case LT:
		return cmp < 0
	case LE:
		return cmp <= 0
	case GT:
		return cmp > 0
	case GE:
		return cmp >= 0
	default:
		return false
	}
}

// ParseCompareOp recognizes the six comparison tokens as they appear in
// both DDL predicate lists and SQL WHERE clauses.
func ParseCompareOp(tok string) (CompareOp, bool) {
	switch tok {
	case "=":
		return EQ, true
	case "!=", "<>":
		return NE, true
	case "<":
		return LT, true
	case "<=":
		return LE, true
	case ">":
		return GT, true
	case ">=":
		return GE, true
	default:
		return 0, false
	}
}

// Predicate is (left-column, op, right-value-or-column). RightCol is set
// only for join predicates, where the right side is another qualified
// column rather than a literal.
type Predicate struct {
	Left     Column
	Op       CompareOp
	Right    Value
	RightCol Column // non-empty iff this is a join predicate
}

// IsJoin reports whether the predicate's right side is a column reference.
func (p Predicate) IsJoin() bool {
	return p.RightCol != ""
}

// Requalify rewrites both column references (if present) to newTable,
// leaving Right (a literal) untouched. Used when pushing predicates across
// a retag_as boundary (spec §4.3).
func (p Predicate) Requalify(newTable string) Predicate {
	p.Left = p.Left.Requalify(newTable)
	if p.IsJoin() {
		p.RightCol = p.RightCol.Requalify(newTable)
	}
	return p
}
