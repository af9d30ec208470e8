package dispatcher

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/frontend"
	"github.com/fragsql/fragsql/optimizer"
	"github.com/fragsql/fragsql/planner"
	"github.com/fragsql/fragsql/router"
	"github.com/fragsql/fragsql/rowexec"
	"github.com/fragsql/fragsql/sqlerr"
)

// process routes one CLI-port line to its handler, returning the
// response rows (row 0 is the header). A failure of any kind collapses
// to a single-cell row carrying its message, per spec §7's "parse and
// lookup failures are reported... as a single-row explanatory result".
func (d *Dispatcher) process(log *logrus.Entry, sess *session, line string) [][]string {
	verb, rest := splitVerb(line)
	switch strings.ToLower(verb) {
	case "createdb":
		return d.handleCreateDB(log, sess, rest)
	case "usedb":
		return d.handleUseDB(log, sess, rest)
	case "close":
		return d.handleClose(log, sess, rest)
	case "createtable":
		return d.handleCreateTable(log, sess, rest)
	case "import":
		return d.handleImport(log, sess, rest)
	default:
		return d.handleSQL(log, sess, line)
	}
}

// splitVerb separates a CLI line's first whitespace-delimited token from
// the remainder, preserving the remainder's internal spacing (a
// createtable statement or a DDL meta line depends on it).
func splitVerb(line string) (verb, rest string) {
	trimmed := strings.TrimSpace(line)
	parts := strings.SplitN(trimmed, " ", 2)
	verb = parts[0]
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}
	return verb, rest
}

func errRow(err error) [][]string {
	return [][]string{{err.Error()}}
}

func okRow() [][]string {
	return [][]string{{"ok"}}
}

func (d *Dispatcher) handleCreateDB(log *logrus.Entry, sess *session, name string) [][]string {
	if name == "" {
		return errRow(fmt.Errorf("createdb requires a database name"))
	}
	db, err := d.cat.AddDB(name)
	if err != nil {
		return errRow(err)
	}
	sess.dbName, sess.db = name, db
	if err := d.sites.Broadcast("createdb", name); err != nil {
		log.WithError(err).Warn("dispatcher: createdb broadcast failed")
	}
	return okRow()
}

func (d *Dispatcher) handleUseDB(log *logrus.Entry, sess *session, name string) [][]string {
	if name == "" {
		return errRow(fmt.Errorf("usedb requires a database name"))
	}
	db, ok := d.cat.Get(name)
	if !ok {
		return errRow(sqlerr.ErrUnknownTable.New(name))
	}
	sess.dbName, sess.db = name, db
	if err := d.sites.Broadcast("usedb", name); err != nil {
		log.WithError(err).Warn("dispatcher: usedb broadcast failed")
	}
	return okRow()
}

// handleClose broadcasts close to every site; a site's own control
// handler terminates only when the name it receives matches its own
// node name (spec §4.6). An empty argument defaults to this
// coordinator's own name, so a bare "close" shuts down the node a client
// is directly connected to.
func (d *Dispatcher) handleClose(log *logrus.Entry, sess *session, name string) [][]string {
	if name == "" {
		name = d.nodeName
	}
	if err := d.sites.Broadcast("close", name); err != nil {
		log.WithError(err).Warn("dispatcher: close broadcast failed")
	}
	if name == d.nodeName {
		select {
		case d.closeRequests <- name:
		default:
		}
	}
	return okRow()
}

// handleCreateTable applies stmt to the session's database and dispatches
// the resulting per-site CREATE TABLE SQL (catalog.CreateTable's return
// value) to each site via exec_sql — the site RPC method already built to
// carry arbitrary SQL text, rather than inventing a second per-site
// control shape.
func (d *Dispatcher) handleCreateTable(log *logrus.Entry, sess *session, stmt string) [][]string {
	if sess.db == nil {
		return errRow(fmt.Errorf("no database selected (usedb first)"))
	}
	if stmt == "" {
		return errRow(fmt.Errorf("createtable requires a statement"))
	}
	siteSQL, err := d.cat.CreateTable(sess.dbName, stmt)
	if err != nil {
		return errRow(err)
	}
	for site, sql := range siteSQL {
		for _, ddl := range strings.Split(sql, ";\n") {
			ddl = strings.TrimSpace(ddl)
			if ddl == "" {
				continue
			}
			if _, _, err := d.sites.ExecSQL(context.Background(), site, ddl); err != nil {
				log.WithError(err).WithField("site", site).Warn("dispatcher: createtable dispatch failed")
			}
		}
	}
	return okRow()
}

// handleImport reads a TSV file from the coordinator's local filesystem
// and routes it exactly as a SQL INSERT would (spec §4.5's
// insert_from_tsv).
func (d *Dispatcher) handleImport(log *logrus.Entry, sess *session, rest string) [][]string {
	if sess.db == nil {
		return errRow(fmt.Errorf("no database selected (usedb first)"))
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return errRow(fmt.Errorf("import requires <table> <tsv-path>"))
	}
	table, path := fields[0], fields[1]

	f, err := os.Open(path)
	if err != nil {
		return errRow(err)
	}
	defer f.Close()

	stmt, err := router.InsertFromTSV(table, f, sess.db)
	if err != nil {
		return errRow(err)
	}
	return d.dispatchInsert(log, stmt, sess.db)
}

func (d *Dispatcher) handleSQL(log *logrus.Entry, sess *session, sql string) [][]string {
	if sess.db == nil {
		return errRow(fmt.Errorf("no database selected (usedb first)"))
	}
	verb, _ := splitVerb(sql)
	switch strings.ToLower(verb) {
	case "select":
		return d.handleSelect(sess, sql)
	case "insert":
		return d.handleInsertSQL(log, sess, sql)
	case "delete":
		return d.handleDelete(sess, sql)
	default:
		return errRow(sqlerr.ErrParse.New("unrecognized statement: " + verb))
	}
}

func (d *Dispatcher) handleSelect(sess *session, sql string) [][]string {
	stmt, err := frontend.BuildSelectStmt(sql, sess.db)
	if err != nil {
		return errRow(err)
	}
	raw, err := planner.BuildRawTree(stmt, sess.db)
	if err != nil {
		return errRow(err)
	}

	optimizer.PushDown(raw, nil, nil, "", sess.db)
	executable := optimizer.Copy(raw)
	optimizer.OptimizeExecNode(executable)

	res, err := rowexec.Execute(context.Background(), executable, sess.db, d.sites)
	if err != nil {
		return errRow(err)
	}
	return resultToVals(res)
}

func resultToVals(res *rowexec.Result) [][]string {
	header := make([]string, len(res.Header))
	for i, c := range res.Header {
		header[i] = string(c)
	}
	vals := make([][]string, 0, len(res.Rows)+1)
	vals = append(vals, header)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.Raw()
		}
		vals = append(vals, cells)
	}
	return vals
}

func (d *Dispatcher) handleInsertSQL(log *logrus.Entry, sess *session, sql string) [][]string {
	stmt, err := frontend.BuildInsertStmt(sql, sess.db)
	if err != nil {
		return errRow(err)
	}
	return d.dispatchInsert(log, stmt, sess.db)
}

// dispatchInsert routes stmt across its table's fragments and hands each
// non-empty per-site batch to the site RPC insert call, acknowledging the
// total row count actually dispatched (rows a disjoint HFRAG predicate
// set drops reach no site and are not counted, per spec §4.5).
func (d *Dispatcher) dispatchInsert(log *logrus.Entry, stmt *frontend.InsertStmt, db *catalog.DatabaseMeta) [][]string {
	siteInserts, err := router.RouteInsert(stmt, db)
	if err != nil {
		return errRow(err)
	}

	var total int
	for _, si := range siteInserts {
		if len(si.Rows) == 0 {
			continue
		}
		rows := make([][]string, len(si.Rows))
		for i, row := range si.Rows {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = v.Raw()
			}
			rows[i] = cells
		}
		if err := d.sites.Insert(si.Site, si.FragName, si.Cols, rows); err != nil {
			log.WithError(err).WithField("site", si.Site).Warn("dispatcher: insert dispatch failed")
			continue
		}
		total += len(si.Rows)
	}
	return [][]string{{"inserted"}, {fmt.Sprintf("%d", total)}}
}

// handleDelete acknowledges a DELETE against a known table. frontend's
// DeleteStmt carries only the target table name (see its doc comment for
// why no predicate-aware deletion path exists here), so there is nothing
// further to execute.
func (d *Dispatcher) handleDelete(sess *session, sql string) [][]string {
	stmt, err := frontend.BuildDeleteStmt(sql)
	if err != nil {
		return errRow(err)
	}
	if _, ok := sess.db.Table(stmt.Table); !ok {
		return errRow(sqlerr.ErrUnknownTable.New(stmt.Table))
	}
	return okRow()
}
