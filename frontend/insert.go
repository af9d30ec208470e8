package frontend

import (
	"gopkg.in/src-d/go-vitess.v0/go/vt/sqlparser"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/sqlerr"
	"github.com/fragsql/fragsql/sqltypes"
)

// BuildInsertStmt parses an INSERT and types each literal per the
// target table's declared column_type (spec §4.1's TableMeta), rather
// than trusting the parser's own literal-kind guess — a bare numeral
// quoted as a string literal must still compare correctly against an
// "int" column later in push-down and execution.
func BuildInsertStmt(sql string, db *catalog.DatabaseMeta) (*InsertStmt, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, sqlerr.ErrParse.New(err)
	}
	ins, ok := stmt.(*sqlparser.Insert)
	if !ok {
		return nil, sqlerr.ErrParse.New("not an INSERT statement")
	}

	table := ins.Table.Name.String()
	tm, ok := db.Table(table)
	if !ok {
		return nil, sqlerr.ErrUnknownTable.New(table)
	}

	cols := ins.Columns
	if len(cols) == 0 {
		cols = make(sqlparser.Columns, len(tm.Columns))
		for i, c := range tm.Columns {
			cols[i] = sqlparser.NewColIdent(c)
		}
	}
	stmtCols := make([]sqltypes.Column, len(cols))
	colNames := make([]string, len(cols))
	for i, c := range cols {
		colNames[i] = c.String()
		stmtCols[i] = sqltypes.NewColumn(table, colNames[i])
	}

	values, ok := ins.Rows.(sqlparser.Values)
	if !ok {
		return nil, sqlerr.ErrParse.New("unsupported INSERT value source")
	}

	rows := make([][]sqltypes.Value, 0, len(values))
	for _, tuple := range values {
		if len(tuple) != len(colNames) {
			return nil, sqlerr.ErrParse.New("INSERT value count does not match column count")
		}
		row := make([]sqltypes.Value, len(tuple))
		for i, expr := range tuple {
			sqlVal, ok := expr.(*sqlparser.SQLVal)
			if !ok {
				return nil, sqlerr.ErrParse.New("unsupported INSERT value expression")
			}
			val, ok := typedInsertLiteral(tm, colNames[i], sqlVal)
			if !ok {
				return nil, sqlerr.ErrParse.New("INSERT value does not match column type for " + colNames[i])
			}
			row[i] = val
		}
		rows = append(rows, row)
	}

	return &InsertStmt{Table: table, Cols: stmtCols, Rows: rows}, nil
}

func typedInsertLiteral(tm *catalog.TableMeta, col string, v *sqlparser.SQLVal) (sqltypes.Value, bool) {
	return sqltypes.ParseTypedLiteral(tm.ColumnType[col], string(v.Val))
}

// BuildDeleteStmt parses a DELETE and reports only the target table
// (spec §6's DeleteStmt carries no predicate; see the comment on
// DeleteStmt for why this mirrors the original prototype's own
// boundary).
func BuildDeleteStmt(sql string) (*DeleteStmt, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, sqlerr.ErrParse.New(err)
	}
	del, ok := stmt.(*sqlparser.Delete)
	if !ok {
		return nil, sqlerr.ErrParse.New("not a DELETE statement")
	}
	names, err := fromTables(del.TableExprs)
	if err != nil {
		return nil, err
	}
	if len(names) != 1 {
		return nil, sqlerr.ErrParse.New("DELETE must name exactly one table")
	}
	return &DeleteStmt{Table: names[0]}, nil
}
