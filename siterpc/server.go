package siterpc

import (
	"io"
	"net"

	"github.com/sirupsen/logrus"
)

// Store is the local handler set a site exposes over RPC (spec §4.7): a
// SQL text executor, a typed-row inserter, and the three control verbs.
// fragsql/localstore implements this against its in-memory fragment
// tables.
type Store interface {
	ExecSQL(sql string) (header []string, rows [][]string, err error)
	Insert(table string, header []string, rows [][]string) error
	Control(command, kind string) error
}

// Server accepts connections and dispatches each request frame —
// [uint32 method][method-specific payload] — to store, replying with
// [string status][method-specific payload]: an empty status means ok and
// is followed by the payload; any other status is the error's message,
// with no payload after it.
type Server struct {
	store Store
	log   *logrus.Entry
}

// NewServer builds a Server wrapping store, logging through log.
func NewServer(store Store, log *logrus.Entry) *Server {
	return &Server{store: store, log: log}
}

// Serve accepts connections from ln until it returns an error (e.g. the
// listener was closed), handling each one in its own goroutine so a slow
// or stuck client never blocks new connections (mirrors the original's
// "ignore, not return, handle_connection's future" accept loop).
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := s.log.WithField("remote", conn.RemoteAddr().String())
	for {
		method, err := readUint32(conn)
		if err != nil {
			if err.Error() != "EOF" {
				log.WithError(err).Debug("siterpc: connection closed")
			}
			return
		}
		if err := s.dispatch(conn, MethodID(method)); err != nil {
			log.WithError(err).Warn("siterpc: request failed")
			return
		}
	}
}

func (s *Server) dispatch(conn net.Conn, method MethodID) error {
	switch method {
	case MethodSQLExec:
		return s.handleSQLExec(conn)
	case MethodInsert:
		return s.handleInsert(conn)
	case MethodControl:
		return s.handleControl(conn)
	default:
		return writeStatus(conn, "unknown method")
	}
}

func (s *Server) handleSQLExec(conn net.Conn) error {
	sql, err := readString(conn)
	if err != nil {
		return err
	}
	header, rows, err := s.store.ExecSQL(sql)
	if err != nil {
		return writeStatus(conn, err.Error())
	}
	if err := writeStatus(conn, ""); err != nil {
		return err
	}
	if err := writeStrings(conn, header); err != nil {
		return err
	}
	return writeStringMatrix(conn, rows)
}

func (s *Server) handleInsert(conn net.Conn) error {
	table, err := readString(conn)
	if err != nil {
		return err
	}
	header, err := readStrings(conn)
	if err != nil {
		return err
	}
	rows, err := readStringMatrix(conn)
	if err != nil {
		return err
	}
	if err := s.store.Insert(table, header, rows); err != nil {
		return writeStatus(conn, err.Error())
	}
	return writeStatus(conn, "")
}

func (s *Server) handleControl(conn net.Conn) error {
	command, err := readString(conn)
	if err != nil {
		return err
	}
	kind, err := readString(conn)
	if err != nil {
		return err
	}
	if err := s.store.Control(command, kind); err != nil {
		return writeStatus(conn, err.Error())
	}
	return writeStatus(conn, "")
}

// writeStatus writes the ok/error prefix every response begins with: an
// empty string means success, any other value is the error message.
func writeStatus(w io.Writer, msg string) error {
	return writeString(w, msg)
}
