// Package siterpc implements C7: the wire protocol a coordinator uses to
// call a site's exec_sql/insert/control handlers (spec §4.7), grounded on
// original_source/headers/serializer.hpp's fixed-width-arithmetic +
// uint32-length-prefixed encoding.
package siterpc

import (
	"encoding/binary"
	"io"
)

// MethodID distinguishes the three site RPC handlers (spec §6).
type MethodID uint32

const (
	MethodSQLExec MethodID = 1
	MethodInsert  MethodID = 2
	MethodControl MethodID = 3
)

// byteOrder is pinned to little-endian on both ends of the wire; the
// original's "host order" is ambiguous across a heterogeneous cluster,
// and spec.md §6 is already explicit about little-endian for the client
// protocol's length prefix, so the site protocol uses the same order for
// a single consistent codec.
var byteOrder = binary.LittleEndian

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	byteOrder.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return byteOrder.Uint32(buf[:]), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeStrings(w io.Writer, ss []string) error {
	if err := writeUint32(w, uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(r io.Reader) ([]string, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// writeStringMatrix encodes a [][]string as a uint32-length-prefixed
// container of uint32-length-prefixed containers of strings, matching
// serializer.hpp's nested write_container rule.
func writeStringMatrix(w io.Writer, rows [][]string) error {
	if err := writeUint32(w, uint32(len(rows))); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeStrings(w, row); err != nil {
			return err
		}
	}
	return nil
}

func readStringMatrix(r io.Reader) ([][]string, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([][]string, n)
	for i := range out {
		row, err := readStrings(r)
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}
