// Package catalog implements C1: in-memory fragment metadata, loaded from
// and persisted to per-database DDL-line stores (spec §4.1).
package catalog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const linesBucket = "frags"

// Catalog holds every logical database this node has opened, each backed
// by its own on-disk store (named "<db>_<node>.db", per spec §8 scenario 4).
type Catalog struct {
	log      *logrus.Entry
	node     string
	dataDir  string
	initfile string

	mu    sync.RWMutex
	dbs   map[string]*DatabaseMeta
	stores map[string]*store
}

// New creates a Catalog for nodeName. dataDir is the directory the
// per-database store files are created in; initfile, if non-empty, seeds
// a brand-new database's store with its contents the first time it is
// opened (spec §6's "optional ... initfile for the coordinator's own
// metadata store").
func New(log *logrus.Entry, nodeName, dataDir, initfile string) *Catalog {
	return &Catalog{
		log:      log,
		node:     nodeName,
		dataDir:  dataDir,
		initfile: initfile,
		dbs:      map[string]*DatabaseMeta{},
		stores:   map[string]*store{},
	}
}

func (c *Catalog) path(dbName string) string {
	if c.dataDir == "" {
		return fmt.Sprintf("%s_%s.db", dbName, c.node)
	}
	return fmt.Sprintf("%s/%s_%s.db", c.dataDir, dbName, c.node)
}

// AddDB opens (or creates) dbName's store and returns its in-memory
// DatabaseMeta. On first creation the store is seeded from the catalog's
// initfile, if any, and the seed lines are replayed through
// ProcessCreateMeta; on subsequent opens, the persisted lines are replayed
// instead.
func (c *Catalog) AddDB(dbName string) (*DatabaseMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.dbs[dbName]; ok {
		return db, nil
	}

	path := c.path(dbName)
	isNew := !fileExists(path)

	st, err := openStore(path)
	if err != nil {
		return nil, err
	}

	if err := st.createBucket(linesBucket); err != nil {
		st.close()
		return nil, err
	}

	db := NewDatabaseMeta()

	if isNew && c.initfile != "" {
		seed, err := readLines(c.initfile)
		if err != nil {
			st.close()
			return nil, err
		}
		for _, line := range seed {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := st.appendLine(linesBucket, line); err != nil {
				st.close()
				return nil, err
			}
			ProcessCreateMeta(c.log, line, db)
		}
	} else {
		lines, err := st.lines(linesBucket)
		if err != nil {
			st.close()
			return nil, err
		}
		for _, line := range lines {
			ProcessCreateMeta(c.log, line, db)
		}
	}

	c.dbs[dbName] = db
	c.stores[dbName] = st
	return db, nil
}

// Get returns an already-opened database's metadata.
func (c *Catalog) Get(dbName string) (*DatabaseMeta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	db, ok := c.dbs[dbName]
	return db, ok
}

// CreateTable applies a `createtable` statement (spec §4.1's
// parse_create_table) to dbName's catalog, persisting each constituent
// line to its store, and returns the per-site CREATE TABLE SQL the caller
// must dispatch to materialize the new fragments.
func (c *Catalog) CreateTable(dbName, stmt string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, ok := c.dbs[dbName]
	if !ok {
		return nil, fmt.Errorf("database %q is not open", dbName)
	}
	st := c.stores[dbName]

	siteSQL := ParseCreateTable(c.log, stmt, db)

	for _, line := range strings.Split(stmt, "|") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := st.appendLine(linesBucket, line); err != nil {
			return nil, err
		}
	}

	return siteSQL, nil
}

// Close releases every open store.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, st := range c.stores {
		if err := st.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}
