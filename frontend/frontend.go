// Package frontend implements C2: it wraps the vitess-lineage SQL parser
// and normalizes the statement shapes the rest of the coordinator cares
// about — SELECT, INSERT, DELETE — into the internal SelectStmt/InsertStmt/
// DeleteStmt types. DDL and the control verbs (createdb/usedb/close/
// createtable) never reach this package; they are plain CLI tokens the
// dispatcher routes directly to catalog/siterpc (spec §4.6).
package frontend

import (
	"github.com/fragsql/fragsql/sqltypes"
)

// SelectStmt is the normalized shape build_select_stmt produces (spec
// §4.2): the tables named in FROM, the columns actually projected, and
// the WHERE tree split into join predicates (column = column) and filter
// predicates (column op literal).
type SelectStmt struct {
	Tables        []string
	ProjectedCols []sqltypes.Column
	JoinPreds     []sqltypes.Predicate
	FilterPreds   []sqltypes.Predicate
}

// InsertStmt is a single INSERT statement's table, column list, and the
// literal rows to insert.
type InsertStmt struct {
	Table string
	Cols  []sqltypes.Column
	Rows  [][]sqltypes.Value
}

// DeleteStmt names the table a DELETE targets. The original prototype's
// own parser carried this shape with no predicate support, and no caller
// in it ever executed a DELETE end-to-end; this adapter preserves that
// same boundary rather than inventing predicate-aware deletion semantics
// the rest of the system (C4-C6) was never designed to push down.
type DeleteStmt struct {
	Table string
}
