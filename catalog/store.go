package catalog

import (
	"encoding/binary"
	"os"

	"github.com/boltdb/bolt"
)

// store is the coordinator's own persisted metadata store: one boltdb
// bucket per logical database, holding its DDL lines as an ordered list
// (sequential uint64 keys, so bucket.ForEach visits them in declaration
// order). This stands in for the "single metadata relation holding DDL
// lines" of spec §4.1 — see SPEC_FULL.md's DOMAIN STACK table for why a
// second SQL engine isn't used here.
type store struct {
	db *bolt.DB
}

func openStore(path string) (*store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (s *store) close() error {
	return s.db.Close()
}

// bucketExists reports whether name's bucket is already present, i.e.
// whether this is a fresh open or a restart.
func (s *store) bucketExists(name string) bool {
	exists := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket([]byte(name)) != nil
		return nil
	})
	return exists
}

// createBucket creates name's bucket if absent (idempotent).
func (s *store) createBucket(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
}

// appendLine appends one DDL line to name's bucket.
func (s *store) appendLine(name, line string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(itob(seq), []byte(line))
	})
}

// lines returns every persisted DDL line for name, in declaration order.
func (s *store) lines(name string) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			out = append(out, string(v))
			return nil
		})
	})
	return out, err
}

func itob(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// fileExists is used by Catalog.AddDB to decide whether a backing file is
// a fresh store (seed from initfile) or a restart (replay only), mirroring
// original_source/headers/rpc-engine.hh's std::filesystem::exists check.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
