// Package router implements C6: partitioning an INSERT's rows across the
// fragments that should physically store them (spec §4.5).
package router

import (
	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/frontend"
	"github.com/fragsql/fragsql/sqlerr"
	"github.com/fragsql/fragsql/sqltypes"
)

// SiteInsert is the rows routed to one physical fragment, ready to hand
// to siterpc's INSERT call: Cols names the fragment's own columns in the
// order Rows carries their values.
type SiteInsert struct {
	Site     string
	FragName string
	Cols     []string
	Rows     [][]sqltypes.Value
}

// RouteInsert partitions stmt's rows across stmt.Table's fragments
// (spec §4.5): every row reaches every V-fragment projected onto that
// fragment's columns, while an H-fragment row is assigned to the first
// fragment (in catalog declaration order) whose predicate conjunction
// holds, with unmatched rows dropped silently.
func RouteInsert(stmt *frontend.InsertStmt, db *catalog.DatabaseMeta) ([]SiteInsert, error) {
	tm, ok := db.Table(stmt.Table)
	if !ok {
		return nil, sqlerr.ErrUnknownTable.New(stmt.Table)
	}

	colIdx := make(map[string]int, len(stmt.Cols))
	for i, c := range stmt.Cols {
		colIdx[c.Unqualified()] = i
	}

	switch tm.FragType {
	case catalog.VFRAG:
		return routeVFrag(stmt, tm, colIdx), nil
	case catalog.HFRAG:
		return routeHFrag(stmt, tm, colIdx), nil
	default:
		return nil, sqlerr.ErrUnknownTable.New(stmt.Table)
	}
}

func routeVFrag(stmt *frontend.InsertStmt, tm *catalog.TableMeta, colIdx map[string]int) []SiteInsert {
	out := make([]SiteInsert, 0, len(tm.VFrags))
	for _, vf := range tm.VFrags {
		rows := make([][]sqltypes.Value, 0, len(stmt.Rows))
		for _, row := range stmt.Rows {
			rows = append(rows, projectRow(row, vf.Cols, colIdx))
		}
		out = append(out, SiteInsert{Site: vf.Site, FragName: vf.FragName, Cols: vf.Cols, Rows: rows})
	}
	return out
}

func routeHFrag(stmt *frontend.InsertStmt, tm *catalog.TableMeta, colIdx map[string]int) []SiteInsert {
	out := make([]SiteInsert, len(tm.HFrags))
	for i, hf := range tm.HFrags {
		out[i] = SiteInsert{Site: hf.Site, FragName: hf.FragName, Cols: tm.Columns}
	}

	for _, row := range stmt.Rows {
		for i, hf := range tm.HFrags {
			if rowMatchesPreds(row, hf.Preds, colIdx) {
				out[i].Rows = append(out[i].Rows, projectRow(row, tm.Columns, colIdx))
				break
			}
		}
	}
	return out
}

// rowMatchesPreds reports whether row satisfies every predicate in preds.
func rowMatchesPreds(row []sqltypes.Value, preds []sqltypes.Predicate, colIdx map[string]int) bool {
	for _, p := range preds {
		idx, ok := colIdx[p.Left.Unqualified()]
		if !ok || idx >= len(row) {
			return false
		}
		cmp := sqltypes.Compare(row[idx], p.Right)
		if !p.Op.Eval(cmp) {
			return false
		}
	}
	return true
}

// projectRow reorders row (indexed per colIdx) onto the column order cols.
func projectRow(row []sqltypes.Value, cols []string, colIdx map[string]int) []sqltypes.Value {
	out := make([]sqltypes.Value, len(cols))
	for i, c := range cols {
		if idx, ok := colIdx[c]; ok && idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}
