package rowexec

import (
	"context"
	"strings"
	"sync"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/plan"
	"github.com/fragsql/fragsql/sqlerr"
	"github.com/fragsql/fragsql/sqltypes"
)

// Execute walks node (the output of optimizer.Copy, further labeled by
// optimizer.OptimizeExecNode) and produces its materialized result.
func Execute(ctx context.Context, node plan.Node, db *catalog.DatabaseMeta, caller SiteCaller) (*Result, error) {
	if node == nil {
		return emptyResult(), nil
	}

	// disabled Projection still reports its header with an empty body;
	// every other disabled node type reports nothing at all (spec §4.4).
	if node.Disabled() {
		if p, ok := node.(*plan.Projection); ok {
			return &Result{Header: append([]sqltypes.Column{}, p.Cols...)}, nil
		}
		return emptyResult(), nil
	}

	switch n := node.(type) {
	case *plan.ReadTable:
		return execReadTable(ctx, n, db, caller)
	case *plan.Projection:
		return execProjection(ctx, n, db, caller)
	case *plan.Selection:
		return execSelection(ctx, n, db, caller)
	case *plan.Rename:
		return execRename(ctx, n, db, caller)
	case *plan.Union:
		return execUnion(ctx, n, db, caller)
	case *plan.NJoin:
		return execNJoin(ctx, n, db, caller)
	default:
		return emptyResult(), nil
	}
}

// execReadTable builds the fragment's own SQL text from its accumulated
// cols/preds, dispatches it to the owning site, and types the returned
// string cells per the logical table's declared column_type.
func execReadTable(ctx context.Context, rt *plan.ReadTable, db *catalog.DatabaseMeta, caller SiteCaller) (*Result, error) {
	tm, ok := db.Table(rt.OrigTable)
	if !ok {
		return nil, sqlerr.ErrUnknownTable.New(rt.OrigTable)
	}

	sql := buildReadTableSQL(rt)
	headerStrs, rowStrs, err := caller.ExecSQL(ctx, rt.Site, sql)
	if err != nil {
		return nil, err
	}

	header := make([]sqltypes.Column, len(headerStrs))
	for i, h := range headerStrs {
		header[i] = sqltypes.Column(h)
	}

	rows := make([][]sqltypes.Value, 0, len(rowStrs))
	for _, rowStr := range rowStrs {
		row := make([]sqltypes.Value, len(header))
		for i, cell := range rowStr {
			if i >= len(header) {
				break
			}
			colType := tm.ColumnType[header[i].Unqualified()]
			val, ok := sqltypes.ParseTypedLiteral(colType, cell)
			if !ok {
				return nil, sqlerr.ErrParse.New("value " + cell + " does not match column type for " + string(header[i]))
			}
			row[i] = val
		}
		rows = append(rows, row)
	}
	return &Result{Header: header, Rows: rows}, nil
}

// buildReadTableSQL renders `SELECT <cols> FROM <frag> WHERE TRUE AND
// <pred1> AND …`, using bare (unqualified) names since the fragment is a
// physical relation with no knowledge of logical-table qualifiers.
func buildReadTableSQL(rt *plan.ReadTable) string {
	bare := make([]string, len(rt.Cols))
	for i, c := range rt.Cols {
		bare[i] = c.Unqualified()
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(bare, ", "))
	b.WriteString(" FROM ")
	b.WriteString(rt.FragName)
	b.WriteString(" WHERE TRUE")
	for _, p := range rt.Preds {
		b.WriteString(" AND ")
		b.WriteString(p.Left.Unqualified())
		b.WriteString(" ")
		b.WriteString(p.Op.String())
		b.WriteString(" ")
		b.WriteString(p.Right.String())
	}
	return b.String()
}

func execProjection(ctx context.Context, p *plan.Projection, db *catalog.DatabaseMeta, caller SiteCaller) (*Result, error) {
	child, err := Execute(ctx, p.Child, db, caller)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(p.Cols))
	for i, c := range p.Cols {
		pos := indexOf(child.Header, c)
		if pos < 0 {
			return nil, sqlerr.ErrUnknownColumn.New(string(c))
		}
		idx[i] = pos
	}

	rows := make([][]sqltypes.Value, len(child.Rows))
	for r, row := range child.Rows {
		out := make([]sqltypes.Value, len(idx))
		for i, pos := range idx {
			out[i] = row[pos]
		}
		rows[r] = out
	}
	return &Result{Header: append([]sqltypes.Column{}, p.Cols...), Rows: rows}, nil
}

// execSelection evaluates s's predicates row-wise. Reachable only when a
// Selection somehow survives optimizer.Copy with Skipped()==false, which
// the push-down pass never produces (it unconditionally marks every
// Selection it visits skipped); kept so execution remains correct for any
// tree not built by that pipeline.
func execSelection(ctx context.Context, s *plan.Selection, db *catalog.DatabaseMeta, caller SiteCaller) (*Result, error) {
	child, err := Execute(ctx, s.Child, db, caller)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(s.Preds))
	for i, p := range s.Preds {
		pos := indexOf(child.Header, p.Left)
		if pos < 0 {
			return nil, sqlerr.ErrUnknownColumn.New(string(p.Left))
		}
		idx[i] = pos
	}

	rows := make([][]sqltypes.Value, 0, len(child.Rows))
	for _, row := range child.Rows {
		keep := true
		for i, p := range s.Preds {
			cmp := sqltypes.Compare(row[idx[i]], p.Right)
			if !p.Op.Eval(cmp) {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return &Result{Header: child.Header, Rows: rows}, nil
}

func execRename(ctx context.Context, rn *plan.Rename, db *catalog.DatabaseMeta, caller SiteCaller) (*Result, error) {
	child, err := Execute(ctx, rn.Child, db, caller)
	if err != nil {
		return nil, err
	}
	return &Result{Header: requalifyHeader(child.Header, rn.NewTable), Rows: child.Rows}, nil
}

// execUnion runs every child concurrently, then concatenates their rows.
// Children may disagree on column order (a site may return a fragment's
// columns in its own physical order), so every child after the
// first is realigned onto the first child's column order by unqualified
// name before its rows are appended (the fallback column-alignment rule).
func execUnion(ctx context.Context, u *plan.Union, db *catalog.DatabaseMeta, caller SiteCaller) (*Result, error) {
	results, err := execChildrenConcurrently(ctx, u.Children, db, caller)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return emptyResult(), nil
	}

	header := results[0].Header
	var rows [][]sqltypes.Value
	for i, res := range results {
		if i == 0 {
			rows = append(rows, res.Rows...)
			continue
		}
		reorder := alignmentFor(header, res.Header)
		for _, row := range res.Rows {
			aligned := make([]sqltypes.Value, len(header))
			for j, pos := range reorder {
				aligned[j] = row[pos]
			}
			rows = append(rows, aligned)
		}
	}

	if u.RetagAs != "" {
		header = requalifyHeader(header, u.RetagAs)
	}
	return &Result{Header: header, Rows: rows}, nil
}

// alignmentFor returns, for each column of target (by position), the
// index of the matching (by unqualified name) column in from.
func alignmentFor(target, from []sqltypes.Column) []int {
	pos := make([]int, len(target))
	for i, c := range target {
		pos[i] = indexOfUnqualified(from, c.Unqualified())
	}
	return pos
}

func indexOfUnqualified(header []sqltypes.Column, name string) int {
	for i, c := range header {
		if c.Unqualified() == name {
			return i
		}
	}
	return -1
}

func indexOf(header []sqltypes.Column, c sqltypes.Column) int {
	for i, h := range header {
		if h == c {
			return i
		}
	}
	return -1
}

func requalifyHeader(header []sqltypes.Column, newTable string) []sqltypes.Column {
	out := make([]sqltypes.Column, len(header))
	for i, c := range header {
		out[i] = c.Requalify(newTable)
	}
	return out
}

type fanOutResult struct {
	res *Result
	err error
}

func execChildrenConcurrently(ctx context.Context, children []plan.Node, db *catalog.DatabaseMeta, caller SiteCaller) ([]*Result, error) {
	out := make([]fanOutResult, len(children))
	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func(i int, child plan.Node) {
			defer wg.Done()
			res, err := Execute(ctx, child, db, caller)
			out[i] = fanOutResult{res: res, err: err}
		}(i, child)
	}
	wg.Wait()

	results := make([]*Result, len(children))
	for i, fo := range out {
		if fo.err != nil {
			return nil, fo.err
		}
		results[i] = fo.res
	}
	return results, nil
}

// execNJoin runs every child concurrently, then hash-joins them on the
// shared key named by join_cols: each child's own join column is the
// first entry of join_cols present (by exact qualified name) in its own
// header. Rows are grouped into a per-child multimap keyed by the join
// value; the smallest child (by row count) drives iteration, visiting
// each of its distinct keys once, and for every key present in every
// child's multimap the Cartesian product of the matching row-tails is
// emitted (spec §4.4).
func execNJoin(ctx context.Context, n *plan.NJoin, db *catalog.DatabaseMeta, caller SiteCaller) (*Result, error) {
	results, err := execChildrenConcurrently(ctx, n.Children, db, caller)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return emptyResult(), nil
	}

	joinColIdx := make([]int, len(results))
	tails := make([][]sqltypes.Column, len(results))
	multimaps := make([]map[sqltypes.Value][][]sqltypes.Value, len(results))

	for i, res := range results {
		idx := -1
		for _, jc := range n.JoinCols {
			if p := indexOf(res.Header, jc); p >= 0 {
				idx = p
				break
			}
		}
		if idx < 0 {
			return nil, sqlerr.ErrUnknownColumn.New("no join column present in NJoin child header")
		}
		joinColIdx[i] = idx

		tail := make([]sqltypes.Column, 0, len(res.Header)-1)
		for j, c := range res.Header {
			if j != idx {
				tail = append(tail, c)
			}
		}
		tails[i] = tail

		mm := make(map[sqltypes.Value][][]sqltypes.Value)
		for _, row := range res.Rows {
			key := row[idx]
			rest := make([]sqltypes.Value, 0, len(row)-1)
			for j, v := range row {
				if j != idx {
					rest = append(rest, v)
				}
			}
			mm[key] = append(mm[key], rest)
		}
		multimaps[i] = mm
	}

	driver := 0
	for i, res := range results {
		if len(res.Rows) < len(results[driver].Rows) {
			driver = i
		}
	}

	var outRows [][]sqltypes.Value
	seenKey := make(map[sqltypes.Value]bool)
	for _, row := range results[driver].Rows {
		key := row[joinColIdx[driver]]
		if seenKey[key] {
			continue
		}
		seenKey[key] = true

		tailLists := make([][][]sqltypes.Value, len(results))
		allPresent := true
		for i := range results {
			tail, ok := multimaps[i][key]
			if !ok {
				allPresent = false
				break
			}
			tailLists[i] = tail
		}
		if !allPresent {
			continue
		}
		outRows = append(outRows, cartesianJoinRows(key, tailLists)...)
	}

	header := make([]sqltypes.Column, 0, 1+len(results))
	header = append(header, results[0].Header[joinColIdx[0]])
	for _, tail := range tails {
		header = append(header, tail...)
	}
	if n.RetagAs != "" {
		header = requalifyHeader(header, n.RetagAs)
	}
	return &Result{Header: header, Rows: outRows}, nil
}

// cartesianJoinRows emits key followed by one tail per child, enumerating
// every combination across children's tail lists for this key.
func cartesianJoinRows(key sqltypes.Value, tailLists [][][]sqltypes.Value) [][]sqltypes.Value {
	combos := [][]sqltypes.Value{{}}
	for _, tails := range tailLists {
		var next [][]sqltypes.Value
		for _, combo := range combos {
			for _, tail := range tails {
				row := make([]sqltypes.Value, 0, len(combo)+len(tail))
				row = append(row, combo...)
				row = append(row, tail...)
				next = append(next, row)
			}
		}
		combos = next
	}
	rows := make([][]sqltypes.Value, len(combos))
	for i, combo := range combos {
		row := make([]sqltypes.Value, 0, 1+len(combo))
		row = append(row, key)
		row = append(row, combo...)
		rows[i] = row
	}
	return rows
}
