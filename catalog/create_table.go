package catalog

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseCreateTable accepts a `|`-separated sequence of DDL lines (the
// payload of the `createtable` CLI verb, spec §6), applies each of them to
// db via ProcessCreateMeta, and returns the site-local CREATE TABLE SQL
// text each participating site must run to materialize its fragment(s).
func ParseCreateTable(log *logrus.Entry, stmt string, db *DatabaseMeta) map[string]string {
	lines := strings.Split(stmt, "|")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ProcessCreateMeta(log, line, db)
	}

	out := map[string]string{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.EqualFold(fields[0], "CREATEMETA") {
			continue
		}
		switch strings.ToUpper(fields[1]) {
		case "H":
			site, frag, ok := splitSiteFrag(fields[2])
			if !ok {
				continue
			}
			table := fields[4]
			tm, ok := db.Table(table)
			if !ok {
				continue
			}
			out[site] += createTableSQL(frag, tm.Columns, tm.ColumnType) + ";\n"
		case "V":
			site, frag, ok := splitSiteFrag(fields[2])
			if !ok {
				continue
			}
			table := fields[4]
			tm, ok := db.Table(table)
			if !ok {
				continue
			}
			var cols []string
			for _, f := range tm.VFrags {
				if f.Site == site && f.FragName == frag {
					cols = f.Cols
					break
				}
			}
			if cols == nil {
				continue
			}
			out[site] += createTableSQL(frag, cols, tm.ColumnType) + ";\n"
		}
	}
	return out
}

func createTableSQL(fragName string, cols []string, types map[string]string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(fragName)
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
		b.WriteByte(' ')
		b.WriteString(sqlTypeName(types[c]))
	}
	b.WriteString(")")
	return b.String()
}

func sqlTypeName(t string) string {
	if t == "int" {
		return "INTEGER"
	}
	return "TEXT"
}
