// Package localstore is the site-local boundary stand-in: a minimal
// in-memory fragment store implementing siterpc.Store, serving only the
// specific generated statement shapes the rest of the engine ever sends
// it (spec §1 explicitly puts a real local SQL engine out of scope).
// Grounded on the teacher's in-memory row-store shape (`sql/memory`): a
// table is an ordered column list plus a row slice.
package localstore

import (
	"strconv"
	"strings"
	"sync"

	"github.com/fragsql/fragsql/sqlerr"
)

// Table is one physical fragment: an ordered column list plus its rows,
// each cell stored as the raw stringified value siterpc's wire format
// carries (spec §4.7: "rows[1..] are stringified values").
type Table struct {
	Cols []string
	Rows [][]string
}

// Site is one node's local fragment store: a set of named Tables,
// created on first INSERT or explicit `createtable` control command.
type Site struct {
	mu     sync.Mutex
	tables map[string]*Table
	closed bool
}

// NewSite builds an empty Site.
func NewSite() *Site {
	return &Site{tables: map[string]*Table{}}
}

// ExecSQL serves exactly the two SQL shapes ever sent to a site: a
// generated `SELECT <cols> FROM <frag> WHERE TRUE [AND <col> <op>
// <val>]*` (fragsql/rowexec) and a `CREATE TABLE <frag> (<col> <TYPE>,
// ...)` DDL statement dispatched by fragsql/dispatcher's createtable
// handler (catalog.CreateTable's per-site return value).
func (s *Site) ExecSQL(sql string) ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.HasPrefix(sql, "CREATE TABLE ") {
		return s.execCreateTable(sql)
	}

	sel, err := parseSelect(sql)
	if err != nil {
		return nil, nil, err
	}
	tbl, ok := s.tables[sel.frag]
	if !ok {
		return nil, nil, sqlerr.ErrUnknownTable.New(sel.frag)
	}

	colIdx := make([]int, len(sel.cols))
	for i, c := range sel.cols {
		pos := indexOf(tbl.Cols, c)
		if pos < 0 {
			return nil, nil, sqlerr.ErrUnknownColumn.New(c)
		}
		colIdx[i] = pos
	}

	predIdx := make([]int, len(sel.preds))
	for i, p := range sel.preds {
		pos := indexOf(tbl.Cols, p.col)
		if pos < 0 {
			return nil, nil, sqlerr.ErrUnknownColumn.New(p.col)
		}
		predIdx[i] = pos
	}

	var rows [][]string
	for _, row := range tbl.Rows {
		keep := true
		for i, p := range sel.preds {
			if !p.eval(row[predIdx[i]]) {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		out := make([]string, len(colIdx))
		for i, pos := range colIdx {
			out[i] = row[pos]
		}
		rows = append(rows, out)
	}

	header := make([]string, len(sel.cols))
	for i, c := range sel.cols {
		header[i] = sel.frag + "." + c
	}
	return header, rows, nil
}

// execCreateTable parses a `CREATE TABLE <frag> (<col> <TYPE>, ...)`
// statement and pre-creates an empty fragment with that column order, so
// a SELECT against it before any INSERT already works. A table that
// already exists is left untouched, matching Control's "createtable"
// idempotence.
func (s *Site) execCreateTable(sql string) ([]string, [][]string, error) {
	rest := strings.TrimPrefix(sql, "CREATE TABLE ")
	open := strings.IndexByte(rest, '(')
	shut := strings.LastIndexByte(rest, ')')
	if open < 0 || shut < 0 || shut < open {
		return nil, nil, sqlerr.ErrParse.New("malformed CREATE TABLE: " + sql)
	}
	frag := strings.TrimSpace(rest[:open])
	if frag == "" {
		return nil, nil, sqlerr.ErrParse.New("malformed CREATE TABLE: " + sql)
	}

	var cols []string
	for _, coldef := range strings.Split(rest[open+1:shut], ",") {
		fields := strings.Fields(coldef)
		if len(fields) == 0 {
			continue
		}
		cols = append(cols, fields[0])
	}

	if _, ok := s.tables[frag]; !ok {
		s.tables[frag] = &Table{Cols: cols}
	}
	return []string{"status"}, nil, nil
}

// Insert appends rows to frag (creating it with header as its column
// order on first use); subsequent inserts must agree on that order.
func (s *Site) Insert(frag string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, ok := s.tables[frag]
	if !ok {
		tbl = &Table{Cols: append([]string{}, header...)}
		s.tables[frag] = tbl
	}
	tbl.Rows = append(tbl.Rows, rows...)
	return nil
}

// Control handles the three broadcast control verbs (spec §4.6) plus
// `createtable`, which pre-creates an empty fragment with a declared
// column order so a SELECT against it before any INSERT still works.
func (s *Site) Control(command, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch command {
	case "createtable":
		parts := strings.Split(kind, "|")
		if len(parts) < 1 || parts[0] == "" {
			return sqlerr.ErrParse.New("malformed createtable control payload")
		}
		frag := parts[0]
		var cols []string
		for _, spec := range parts[1:] {
			if spec == "" {
				continue
			}
			name := spec
			if i := strings.Index(spec, ":"); i >= 0 {
				name = spec[:i]
			}
			cols = append(cols, name)
		}
		if _, ok := s.tables[frag]; !ok {
			s.tables[frag] = &Table{Cols: cols}
		}
	case "close":
		s.closed = true
	case "createdb", "usedb":
		// no-op: a Site is already scoped to a single database's
		// fragments by construction; nothing to switch.
	default:
		return sqlerr.ErrUnsupported.New("control command " + command)
	}
	return nil
}

// Closed reports whether this site has received a `close` control
// command, whatever node name it carried.
func (s *Site) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

type pred struct {
	col string
	op  string
	val string
}

func (p pred) eval(cell string) bool {
	cmp := compareStrings(cell, p.val)
	switch p.op {
	case "=":
		return cmp == 0
	case "<>":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

// compareStrings compares two cells numerically if both parse as
// integers, falling back to a byte-wise string compare otherwise — a
// fragment table here has no declared column types of its own (it only
// ever stores the coordinator's already-typed values as text).
func compareStrings(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

type selectStmt struct {
	cols  []string
	frag  string
	preds []pred
}

// parseSelect parses exactly the shape rowexec.buildReadTableSQL emits.
func parseSelect(sql string) (*selectStmt, error) {
	const selectKw, fromKw, whereKw = "SELECT ", " FROM ", " WHERE TRUE"

	if !strings.HasPrefix(sql, selectKw) {
		return nil, sqlerr.ErrParse.New("expected SELECT")
	}
	rest := sql[len(selectKw):]

	fromPos := strings.Index(rest, fromKw)
	if fromPos < 0 {
		return nil, sqlerr.ErrParse.New("expected FROM")
	}
	colsPart := rest[:fromPos]
	rest = rest[fromPos+len(fromKw):]

	wherePos := strings.Index(rest, whereKw)
	if wherePos < 0 {
		return nil, sqlerr.ErrParse.New("expected WHERE TRUE")
	}
	frag := strings.TrimSpace(rest[:wherePos])
	rest = rest[wherePos+len(whereKw):]

	var cols []string
	for _, c := range strings.Split(colsPart, ",") {
		cols = append(cols, strings.TrimSpace(c))
	}

	preds, err := parsePreds(rest)
	if err != nil {
		return nil, err
	}
	return &selectStmt{cols: cols, frag: frag, preds: preds}, nil
}

func parsePreds(rest string) ([]pred, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, nil
	}
	clauses := strings.Split(rest, " AND ")
	preds := make([]pred, 0, len(clauses))
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		fields := strings.SplitN(clause, " ", 3)
		if len(fields) != 3 {
			return nil, sqlerr.ErrParse.New("malformed predicate: " + clause)
		}
		preds = append(preds, pred{col: fields[0], op: fields[1], val: unquote(fields[2])})
	}
	return preds, nil
}

func unquote(tok string) string {
	if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		return strings.ReplaceAll(tok[1:len(tok)-1], "''", "'")
	}
	return tok
}
