package router

import (
	"bufio"
	"io"
	"strings"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/frontend"
	"github.com/fragsql/fragsql/sqlerr"
	"github.com/fragsql/fragsql/sqltypes"
)

// InsertFromTSV reads tab-separated rows from r and builds an InsertStmt
// for table whose Cols equal the catalog's declared column order (spec
// §4.5). Each cell is typed per the column's declared column_type; a row
// whose tab count doesn't match the column count is accepted anyway, as
// a row holding the zero Value (sqltypes.Value{}, which is Int(0)) in
// every column, rather than rejected.
func InsertFromTSV(table string, r io.Reader, db *catalog.DatabaseMeta) (*frontend.InsertStmt, error) {
	tm, ok := db.Table(table)
	if !ok {
		return nil, sqlerr.ErrUnknownTable.New(table)
	}

	cols := make([]sqltypes.Column, len(tm.Columns))
	for i, c := range tm.Columns {
		cols[i] = sqltypes.NewColumn(table, c)
	}

	var rows [][]sqltypes.Value
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		row := make([]sqltypes.Value, len(tm.Columns))
		if len(cells) == len(tm.Columns) {
			for i, c := range tm.Columns {
				val, ok := sqltypes.ParseTypedLiteral(tm.ColumnType[c], cells[i])
				if ok {
					row[i] = val
				}
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &frontend.InsertStmt{Table: table, Cols: cols, Rows: rows}, nil
}
