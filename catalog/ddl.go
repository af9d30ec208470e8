package catalog

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fragsql/fragsql/sqltypes"
)

// ProcessCreateMeta accepts one whitespace-separated DDL line (spec §4.1)
// and applies it to db. Keywords are case-insensitive; malformed lines are
// rejected silently (logged, not returned) per spec.
func ProcessCreateMeta(log *logrus.Entry, line string, db *DatabaseMeta) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "CREATEMETA") {
		log.WithField("line", line).Warn("catalog: not a CREATEMETA line, ignored")
		return
	}

	switch strings.ToUpper(fields[1]) {
	case "T":
		processCreateTableMeta(log, fields[2:], db)
	case "H":
		processCreateHFrag(log, fields[2:], db)
	case "V":
		processCreateVFrag(log, fields[2:], db)
	default:
		log.WithField("line", line).Warn("catalog: unknown CREATEMETA form, ignored")
	}
}

// CREATEMETA T <table> ON {HFRAG|VFRAG} WHERE <col:type> ...
func processCreateTableMeta(log *logrus.Entry, fields []string, db *DatabaseMeta) {
	if len(fields) < 4 || !strings.EqualFold(fields[1], "ON") || !strings.EqualFold(fields[3], "WHERE") {
		log.Warn("catalog: malformed CREATEMETA T line, ignored")
		return
	}
	name := fields[0]
	var ft FragType
	switch strings.ToUpper(fields[2]) {
	case "HFRAG":
		ft = HFRAG
	case "VFRAG":
		ft = VFRAG
	default:
		log.WithField("frag_type", fields[2]).Warn("catalog: unknown frag type, ignored")
		return
	}

	cols := make([]string, 0, len(fields)-4)
	types := make(map[string]string, len(fields)-4)
	for _, spec := range fields[4:] {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			log.WithField("spec", spec).Warn("catalog: malformed column:type, ignored")
			return
		}
		cols = append(cols, parts[0])
		types[parts[0]] = strings.ToLower(parts[1])
	}

	db.Tables[name] = &TableMeta{
		Name:       name,
		FragType:   ft,
		Columns:    cols,
		ColumnType: types,
	}
}

// CREATEMETA H <site>.<frag> ON <table> WHERE <pred> [AND <pred>]*
func processCreateHFrag(log *logrus.Entry, fields []string, db *DatabaseMeta) {
	if len(fields) < 4 || !strings.EqualFold(fields[1], "ON") || !strings.EqualFold(fields[3], "WHERE") {
		log.Warn("catalog: malformed CREATEMETA H line, ignored")
		return
	}
	site, frag, ok := splitSiteFrag(fields[0])
	if !ok {
		log.WithField("token", fields[0]).Warn("catalog: malformed site.frag, ignored")
		return
	}
	table := fields[2]
	tm, ok := db.Tables[table]
	if !ok || tm.FragType != HFRAG {
		log.WithField("table", table).Warn("catalog: CREATEMETA H for unknown/non-HFRAG table, ignored")
		return
	}

	preds, ok := parsePredList(fields[4:], tm)
	if !ok {
		log.Warn("catalog: malformed predicate list, ignored")
		return
	}

	tm.HFrags = append(tm.HFrags, HFrag{Site: site, FragName: frag, Preds: preds})
	db.AddSite(site)
}

// CREATEMETA V <site>.<frag> ON <table> WHERE <col> <col> ...
func processCreateVFrag(log *logrus.Entry, fields []string, db *DatabaseMeta) {
	if len(fields) < 4 || !strings.EqualFold(fields[1], "ON") || !strings.EqualFold(fields[3], "WHERE") {
		log.Warn("catalog: malformed CREATEMETA V line, ignored")
		return
	}
	site, frag, ok := splitSiteFrag(fields[0])
	if !ok {
		log.WithField("token", fields[0]).Warn("catalog: malformed site.frag, ignored")
		return
	}
	table := fields[2]
	tm, ok := db.Tables[table]
	if !ok || tm.FragType != VFRAG {
		log.WithField("table", table).Warn("catalog: CREATEMETA V for unknown/non-VFRAG table, ignored")
		return
	}

	cols := append([]string{}, fields[4:]...)
	if len(cols) == 0 {
		log.Warn("catalog: CREATEMETA V with no columns, ignored")
		return
	}

	tm.VFrags = append(tm.VFrags, VFrag{Site: site, FragName: frag, Cols: cols})
	db.AddSite(site)
}

func splitSiteFrag(token string) (site, frag string, ok bool) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// parsePredList parses "<col> <op> <val> [AND <col> <op> <val>]*" against
// tm's declared column types, typing each literal accordingly.
func parsePredList(fields []string, tm *TableMeta) ([]sqltypes.Predicate, bool) {
	var preds []sqltypes.Predicate
	i := 0
	for i < len(fields) {
		if i+3 > len(fields) {
			return nil, false
		}
		col, opTok, valTok := fields[i], fields[i+1], fields[i+2]
		op, ok := sqltypes.ParseCompareOp(opTok)
		if !ok {
			return nil, false
		}
		val, ok := typedLiteral(tm, col, valTok)
		if !ok {
			return nil, false
		}
		preds = append(preds, sqltypes.Predicate{
			Left:  sqltypes.NewColumn(tm.Name, col),
			Op:    op,
			Right: val,
		})
		i += 3
		if i < len(fields) {
			if !strings.EqualFold(fields[i], "AND") {
				return nil, false
			}
			i++
		}
	}
	if len(preds) == 0 {
		return nil, false
	}
	return preds, true
}

func typedLiteral(tm *TableMeta, col, raw string) (sqltypes.Value, bool) {
	return sqltypes.ParseTypedLiteral(tm.ColumnType[col], raw)
}
