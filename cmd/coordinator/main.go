// Command coordinator runs fragsql's client-facing process: the CLI-port
// dispatcher, the catalog, and the RPC client table used to reach every
// configured site (spec §6).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/config"
	"github.com/fragsql/fragsql/dispatcher"
	"github.com/fragsql/fragsql/siterpc"
)

func main() {
	configPath := flag.String("config", "config.yaml", "cluster config file")
	flag.Parse()

	log := logrus.NewEntry(logrus.New())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("coordinator: failed to load config")
	}
	log = log.WithField("node", cfg.Name)

	dataDir := "."
	if cfg.SQLite.Filename != "" {
		dataDir = filepath.Dir(cfg.SQLite.Filename)
	}
	cat := catalog.New(log.WithField("component", "catalog"), cfg.Name, dataDir, cfg.SQLite.Initfile)
	defer cat.Close()

	// qpFragInit-style warm-up: reopen every database this node already
	// has a store for, so a restart doesn't require a fresh createdb/usedb
	// before existing data is queryable again.
	for _, name := range existingDatabases(dataDir, cfg.Name) {
		if _, err := cat.AddDB(name); err != nil {
			log.WithError(err).WithField("database", name).Fatal("coordinator: failed to warm up catalog")
		}
	}

	sites := siterpc.NewClientTable(cfg)
	defer sites.CloseAll()

	disp := dispatcher.New(cat, sites, cfg.Name, log.WithField("component", "dispatcher"))

	addr := fmt.Sprintf(":%d", cfg.Self().CliPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Fatal("coordinator: failed to listen on CLI port")
	}
	defer ln.Close()

	go func() {
		if err := disp.Serve(ln); err != nil {
			log.WithError(err).Warn("coordinator: CLI listener stopped")
		}
	}()

	log.WithField("addr", addr).Info("coordinator: accepting CLI connections")
	<-disp.CloseRequests()
	log.Info("coordinator: close matched local name, shutting down")
	os.Exit(0)
}

// existingDatabases finds every "<name>_<node>.db" file already present in
// dataDir, reporting the logical database names they back.
func existingDatabases(dataDir, node string) []string {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil
	}
	suffix := "_" + node + ".db"
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, strings.TrimSuffix(e.Name(), suffix))
		}
	}
	return names
}
