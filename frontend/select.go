package frontend

import (
	"fmt"
	"strconv"

	"gopkg.in/src-d/go-vitess.v0/go/vt/sqlparser"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/sqlerr"
	"github.com/fragsql/fragsql/sqltypes"
)

// BuildSelectStmt parses sql and normalizes it against db (spec §4.2):
// unqualified column references are prefixed with the first listed
// table, `*` expands to every listed table's qualified columns, and the
// WHERE tree (a right-leaning AND spine) is split into join predicates
// (right side is a column reference) and filter predicates (right side
// is a literal).
func BuildSelectStmt(sql string, db *catalog.DatabaseMeta) (*SelectStmt, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, sqlerr.ErrParse.New(err)
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, sqlerr.ErrParse.New("not a SELECT statement")
	}

	tables, err := fromTables(sel.From)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, sqlerr.ErrParse.New("SELECT has no FROM tables")
	}
	defaultTable := tables[0]

	cols, err := projectedCols(sel.SelectExprs, tables, defaultTable, db)
	if err != nil {
		return nil, err
	}

	var joinPreds, filterPreds []sqltypes.Predicate
	if sel.Where != nil {
		preds, err := splitWhere(sel.Where.Expr, defaultTable)
		if err != nil {
			return nil, err
		}
		for _, p := range preds {
			if p.IsJoin() {
				joinPreds = append(joinPreds, p)
			} else {
				filterPreds = append(filterPreds, p)
			}
		}
	}

	return &SelectStmt{
		Tables:        tables,
		ProjectedCols: cols,
		JoinPreds:     joinPreds,
		FilterPreds:   filterPreds,
	}, nil
}

// fromTables returns the bare table names of a (Cartesian-style) FROM
// list; joins expressed as SQL JOIN syntax are not a supported shape
// here, since the join graph instead comes from WHERE predicates (spec
// §4.2) — every referenced table is simply listed in FROM.
func fromTables(exprs sqlparser.TableExprs) ([]string, error) {
	var names []string
	for _, te := range exprs {
		aliased, ok := te.(*sqlparser.AliasedTableExpr)
		if !ok {
			return nil, sqlerr.ErrParse.New("unsupported FROM clause shape")
		}
		tn, ok := aliased.Expr.(sqlparser.TableName)
		if !ok {
			return nil, sqlerr.ErrParse.New("unsupported FROM clause shape")
		}
		names = append(names, tn.Name.String())
	}
	return names, nil
}

// projectedCols expands SelectExprs (which may mix "*" and explicit
// columns) against the listed tables, qualifying bare column names with
// defaultTable.
func projectedCols(exprs sqlparser.SelectExprs, tables []string, defaultTable string, db *catalog.DatabaseMeta) ([]sqltypes.Column, error) {
	var cols []sqltypes.Column
	for _, se := range exprs {
		switch e := se.(type) {
		case *sqlparser.StarExpr:
			qualifier := e.TableName.Name.String()
			tbls := tables
			if qualifier != "" {
				tbls = []string{qualifier}
			}
			for _, t := range tbls {
				tm, ok := db.Table(t)
				if !ok {
					return nil, sqlerr.ErrUnknownTable.New(t)
				}
				for _, c := range tm.Columns {
					cols = append(cols, sqltypes.NewColumn(t, c))
				}
			}
		case *sqlparser.AliasedExpr:
			colName, ok := e.Expr.(*sqlparser.ColName)
			if !ok {
				return nil, sqlerr.ErrParse.New("unsupported SELECT expression")
			}
			cols = append(cols, qualifyColName(colName, defaultTable))
		default:
			return nil, sqlerr.ErrParse.New("unsupported SELECT expression")
		}
	}
	return cols, nil
}

func qualifyColName(col *sqlparser.ColName, defaultTable string) sqltypes.Column {
	q := col.Qualifier.Name.String()
	if q == "" {
		q = defaultTable
	}
	return sqltypes.NewColumn(q, col.Name.String())
}

// splitWhere flattens a right-leaning AND spine into a flat predicate
// list, typing each comparison's operator and classifying its right side
// as either a column reference (join predicate) or a literal (filter
// predicate).
func splitWhere(expr sqlparser.Expr, defaultTable string) ([]sqltypes.Predicate, error) {
	if and, ok := expr.(*sqlparser.AndExpr); ok {
		left, err := splitWhere(and.Left, defaultTable)
		if err != nil {
			return nil, err
		}
		right, err := splitWhere(and.Right, defaultTable)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	}

	cmp, ok := expr.(*sqlparser.ComparisonExpr)
	if !ok {
		return nil, sqlerr.ErrParse.New("unsupported WHERE expression")
	}
	leftCol, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return nil, sqlerr.ErrParse.New("WHERE comparison must have a column on the left")
	}
	op, ok := sqltypes.ParseCompareOp(cmp.Operator)
	if !ok {
		return nil, sqlerr.ErrParse.New(fmt.Sprintf("unsupported comparison operator %q", cmp.Operator))
	}

	pred := sqltypes.Predicate{Left: qualifyColName(leftCol, defaultTable), Op: op}
	switch r := cmp.Right.(type) {
	case *sqlparser.ColName:
		pred.RightCol = qualifyColName(r, defaultTable)
	case *sqlparser.SQLVal:
		val, err := sqlValToValue(r)
		if err != nil {
			return nil, err
		}
		pred.Right = val
	default:
		return nil, sqlerr.ErrParse.New("unsupported WHERE comparison right-hand side")
	}
	return []sqltypes.Predicate{pred}, nil
}

func sqlValToValue(v *sqlparser.SQLVal) (sqltypes.Value, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return sqltypes.Str(string(v.Val)), nil
	case sqlparser.IntVal:
		i, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err != nil {
			return sqltypes.Value{}, sqlerr.ErrParse.New(err)
		}
		return sqltypes.Int(i), nil
	default:
		return sqltypes.Value{}, sqlerr.ErrParse.New("unsupported literal type")
	}
}
