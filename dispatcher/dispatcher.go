// Package dispatcher implements C8: the client-facing line protocol. It
// routes each incoming line to the catalog, the planner/optimizer/executor
// pipeline, the insert router, or a site-control broadcast, and serializes
// the result back over the wire in the shape the CLI port promises (spec
// §4.6, §6).
package dispatcher

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/fragsql/fragsql/catalog"
	"github.com/fragsql/fragsql/rowexec"
)

// SiteCaller is everything the dispatcher needs from the site RPC layer:
// the single-site exec_sql call rowexec.Execute drives its fan-out
// through, plus the per-site insert and the all-sites control broadcast.
// *siterpc.ClientTable satisfies this; tests use a fake.
type SiteCaller interface {
	rowexec.SiteCaller
	Insert(site, table string, header []string, rows [][]string) error
	Broadcast(command, kind string) error
}

// Dispatcher is the coordinator's client-facing front-end: it owns the
// catalog and the site RPC client table and serves one CLI-port
// connection per accepted client.
type Dispatcher struct {
	cat      *catalog.Catalog
	sites    SiteCaller
	nodeName string
	log      *logrus.Entry

	closeRequests chan string
}

// New builds a Dispatcher for a coordinator node named nodeName.
func New(cat *catalog.Catalog, sites SiteCaller, nodeName string, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		cat:           cat,
		sites:         sites,
		nodeName:      nodeName,
		log:           log,
		closeRequests: make(chan string, 1),
	}
}

// CloseRequests reports the <name> argument of every "close" command this
// dispatcher has processed that named its own node. cmd/coordinator reads
// from it to know when to shut down gracefully (spec §6: "Exit codes: 0
// on graceful close matching local name").
func (d *Dispatcher) CloseRequests() <-chan string {
	return d.closeRequests
}

// Serve accepts connections on ln until it returns an error (typically
// from ln.Close() during shutdown), handling each on its own goroutine.
func (d *Dispatcher) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go d.handleConn(conn)
	}
}

// session is the per-connection state a CLI client accumulates via
// createdb/usedb: which logical database its SQL and control verbs now
// target.
type session struct {
	dbName string
	db     *catalog.DatabaseMeta
}

func (d *Dispatcher) handleConn(conn net.Conn) {
	defer conn.Close()
	sess := &session{}
	reader := bufio.NewReader(conn)

	for {
		line, readErr := reader.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed != "" {
			log := d.log
			if id, err := uuid.NewV4(); err == nil {
				log = d.log.WithField("request_id", id.String())
			}
			vals := d.process(log, sess, trimmed)
			if _, err := conn.Write(encodeResponse(vals)); err != nil {
				return
			}
		}
		if readErr != nil {
			// Empty read ends the connection (spec §6).
			return
		}
	}
}

// encodeResponse renders vals (row 0 is the header) the way
// original_source/headers/tcpcli-engine.hh does: every row's cells
// tab-terminated and newline-closed, followed by a "DONE TOTAL <n>
// LINES\n" trailer (n = data-row count, i.e. len(vals)-1, clamped at 0 so
// a single-row error reply still reports zero), the whole body prefixed
// by its own byte length as a 4-byte little-endian integer.
func encodeResponse(vals [][]string) []byte {
	var body strings.Builder
	for _, row := range vals {
		for _, cell := range row {
			body.WriteString(cell)
			body.WriteByte('\t')
		}
		body.WriteByte('\n')
	}
	total := len(vals) - 1
	if total < 0 {
		total = 0
	}
	fmt.Fprintf(&body, "DONE TOTAL %d LINES\n", total)

	payload := body.String()
	out := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(payload)))
	copy(out[4:], payload)
	return out
}
