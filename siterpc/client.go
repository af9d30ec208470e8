package siterpc

import (
	"context"
	"net"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/fragsql/fragsql/sqlerr"
)

// Client is a single site's RPC connection, redialed lazily and on error
// (spec §5's reconnect-on-error path). One Client serves every call to its
// site; since a single coordinator request can fan out to the same site
// from several ReadTables at once, each request/response exchange holds
// callMu for its whole duration so frames on the shared connection never
// interleave.
type Client struct {
	site string
	addr string

	mu   sync.Mutex
	conn net.Conn

	callMu sync.Mutex
}

// NewClient builds a Client for site at addr (host:port); the first call
// dials lazily.
func NewClient(site, addr string) *Client {
	return &Client{site: site, addr: addr}
}

func (c *Client) ensureConn() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return nil, errors.Wrapf(err, "siterpc: dial %s (%s)", c.site, c.addr)
	}
	c.conn = conn
	return conn, nil
}

// reconnect drops the current connection (if any) and dials a fresh one,
// matching the original's per-site client-map reopen on error.
func (c *Client) reconnect() (net.Conn, error) {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
	return c.ensureConn()
}

// call runs fn against a live connection, reconnecting once and retrying
// on any transport error (never on an application-level error the site
// itself reported, which fn must surface separately rather than as a Go
// error from the I/O layer).
func (c *Client) call(fn func(net.Conn) error) error {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	conn, err := c.ensureConn()
	if err != nil {
		return sqlerr.ErrConnectionClosed.New(c.site)
	}
	if err := fn(conn); err == nil {
		return nil
	}

	conn, err = c.reconnect()
	if err != nil {
		return sqlerr.ErrConnectionClosed.New(c.site)
	}
	if err := fn(conn); err != nil {
		return sqlerr.ErrConnectionClosed.New(c.site)
	}
	return nil
}

func withSpan(method string, site string, fn func() error) error {
	span := opentracing.StartSpan("siterpc." + method)
	span.SetTag("site", site)
	defer span.Finish()
	err := fn()
	if err != nil {
		span.SetTag("error", true)
	}
	return err
}

// ExecSQL runs sql against this site. ctx is accepted for interface
// conformance with rowexec.SiteCaller's shape; cancellation is
// best-effort only (spec §5), so it is not threaded into the dial/I-O
// calls below.
func (c *Client) ExecSQL(_ context.Context, sql string) (header []string, rows [][]string, err error) {
	var appErr error
	err = withSpan("exec_sql", c.site, func() error {
		return c.call(func(conn net.Conn) error {
			if e := writeUint32(conn, uint32(MethodSQLExec)); e != nil {
				return e
			}
			if e := writeString(conn, sql); e != nil {
				return e
			}
			status, e := readString(conn)
			if e != nil {
				return e
			}
			if status != "" {
				appErr = sqlerr.ErrSiteSQL.New(status)
				return nil
			}
			header, e = readStrings(conn)
			if e != nil {
				return e
			}
			rows, e = readStringMatrix(conn)
			return e
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return header, rows, appErr
}

// Insert sends a fragment's rows to the site (spec §4.7's insert call).
func (c *Client) Insert(table string, header []string, rows [][]string) error {
	var appErr error
	err := withSpan("insert", c.site, func() error {
		return c.call(func(conn net.Conn) error {
			if e := writeUint32(conn, uint32(MethodInsert)); e != nil {
				return e
			}
			if e := writeString(conn, table); e != nil {
				return e
			}
			if e := writeStrings(conn, header); e != nil {
				return e
			}
			if e := writeStringMatrix(conn, rows); e != nil {
				return e
			}
			status, e := readString(conn)
			if e != nil {
				return e
			}
			if status != "" {
				appErr = sqlerr.ErrSiteSQL.New(status)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	return appErr
}

// Control sends one of the three control verbs to the site.
func (c *Client) Control(command, kind string) error {
	var appErr error
	err := withSpan("control", c.site, func() error {
		return c.call(func(conn net.Conn) error {
			if e := writeUint32(conn, uint32(MethodControl)); e != nil {
				return e
			}
			if e := writeString(conn, command); e != nil {
				return e
			}
			if e := writeString(conn, kind); e != nil {
				return e
			}
			status, e := readString(conn)
			if e != nil {
				return e
			}
			if status != "" {
				appErr = sqlerr.ErrSiteSQL.New(status)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	return appErr
}

// Close releases the underlying connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
