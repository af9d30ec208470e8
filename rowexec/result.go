// Package rowexec implements C5: walking the post-copy, post-exec-site
// plan and materializing it into rows, fanning out to sites concurrently
// for Union and NJoin and combining their results (spec §4.4).
package rowexec

import (
	"context"

	"github.com/fragsql/fragsql/sqltypes"
)

// Result is a materialized relation: Header names its columns, qualified
// by the logical table name once any retag_as has been applied; Rows
// holds the typed values in the same column order.
type Result struct {
	Header []sqltypes.Column
	Rows   [][]sqltypes.Value
}

func emptyResult() *Result { return &Result{} }

// SiteCaller dispatches a generated SQL text to a site and returns its
// response: header names the columns, rows hold the stringified cell
// values exactly as the site's SQL engine returned them (spec §4.7's
// exec_sql, with its header row returned separately from the data rows).
// Implemented by siterpc.ClientTable against live sites, or by a fake in
// tests.
type SiteCaller interface {
	ExecSQL(ctx context.Context, site, sql string) (header []string, rows [][]string, err error)
}
