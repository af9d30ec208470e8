package siterpc

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeString(&buf, "hello"))
	require.NoError(t, writeStrings(&buf, []string{"a", "b", "c"}))
	require.NoError(t, writeStringMatrix(&buf, [][]string{{"1", "2"}, {"3"}}))

	s, err := readString(&buf)
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	ss, err := readStrings(&buf)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, ss)

	mat, err := readStringMatrix(&buf)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"1", "2"}, {"3"}}, mat)
}

type fakeStore struct {
	header []string
	rows   [][]string
}

func (f *fakeStore) ExecSQL(sql string) ([]string, [][]string, error) {
	return f.header, f.rows, nil
}

func (f *fakeStore) Insert(table string, header []string, rows [][]string) error {
	return nil
}

func (f *fakeStore) Control(command, kind string) error {
	return nil
}

func TestClientServerExecSQLRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	store := &fakeStore{header: []string{"cust.id", "cust.name"}, rows: [][]string{{"1", "alice"}}}
	srv := NewServer(store, logrus.NewEntry(logrus.New()))
	go srv.Serve(ln)

	client := NewClient("node0", ln.Addr().String())
	defer client.Close()

	header, rows, err := client.ExecSQL(context.Background(), "SELECT id, name FROM cust WHERE TRUE")
	require.NoError(t, err)
	require.Equal(t, []string{"cust.id", "cust.name"}, header)
	require.Equal(t, [][]string{{"1", "alice"}}, rows)
}

func TestClientInsertRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	store := &fakeStore{}
	srv := NewServer(store, logrus.NewEntry(logrus.New()))
	go srv.Serve(ln)

	client := NewClient("node0", ln.Addr().String())
	defer client.Close()

	err = client.Insert("cust", []string{"id", "name"}, [][]string{{"1", "alice"}})
	require.NoError(t, err)
}
