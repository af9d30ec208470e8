package siterpc

import (
	"context"
	"fmt"

	"github.com/fragsql/fragsql/config"
	"github.com/fragsql/fragsql/sqlerr"
)

// ClientTable is the coordinator's map of site name to RPC client (spec
// §5's "RPC client table"), built once from the cluster config and
// implementing rowexec.SiteCaller by routing each call to the named
// site's own Client.
type ClientTable struct {
	clients map[string]*Client
}

// NewClientTable dials (lazily) one Client per node in cfg, this node's
// own included; the coordinator calls every node, its own too, as a site.
func NewClientTable(cfg *config.Config) *ClientTable {
	t := &ClientTable{clients: make(map[string]*Client, len(cfg.Nodes))}
	for name, addr := range cfg.Nodes {
		t.clients[name] = NewClient(name, fmt.Sprintf("%s:%d", addr.Host, addr.Port))
	}
	return t
}

// ExecSQL implements rowexec.SiteCaller.
func (t *ClientTable) ExecSQL(ctx context.Context, site, sql string) ([]string, [][]string, error) {
	c, ok := t.clients[site]
	if !ok {
		return nil, nil, sqlerr.ErrConnectionClosed.New(site)
	}
	return c.ExecSQL(ctx, sql)
}

// Insert routes an already-partitioned fragment insert to its site.
func (t *ClientTable) Insert(site, table string, header []string, rows [][]string) error {
	c, ok := t.clients[site]
	if !ok {
		return sqlerr.ErrConnectionClosed.New(site)
	}
	return c.Insert(table, header, rows)
}

// Broadcast sends a control command to every site, collecting the first
// error encountered (spec §4.6: "the dispatcher broadcasts each to all
// sites").
func (t *ClientTable) Broadcast(command, kind string) error {
	var firstErr error
	for _, c := range t.clients {
		if err := c.Control(command, kind); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CloseAll releases every client's connection.
func (t *ClientTable) CloseAll() {
	for _, c := range t.clients {
		c.Close()
	}
}
