package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogCreateTableAndReopen(t *testing.T) {
	dir := t.TempDir()
	cat := New(testLogger(), "node0", dir, "")

	db, err := cat.AddDB("demo")
	require.NoError(t, err)
	require.Empty(t, db.Tables)

	siteSQL, err := cat.CreateTable("demo",
		"CREATEMETA T Book ON HFRAG WHERE id:int title:str|"+
			"CREATEMETA H node0.b1 ON Book WHERE id < 200000")
	require.NoError(t, err)
	require.Contains(t, siteSQL["node0"], "CREATE TABLE b1")

	tm, ok := db.Table("Book")
	require.True(t, ok)
	require.Len(t, tm.HFrags, 1)

	require.NoError(t, cat.Close())

	// Reopen: persisted lines must replay into a fresh, equivalent catalog.
	cat2 := New(testLogger(), "node0", dir, "")
	db2, err := cat2.AddDB("demo")
	require.NoError(t, err)
	tm2, ok := db2.Table("Book")
	require.True(t, ok)
	require.Len(t, tm2.HFrags, 1)
	require.Equal(t, "b1", tm2.HFrags[0].FragName)
}

func TestCatalogSeedFromInitfile(t *testing.T) {
	dir := t.TempDir()
	initPath := dir + "/init.ddl"
	require.NoError(t, os.WriteFile(initPath, []byte("CREATEMETA T X ON HFRAG WHERE id:int\n"), 0644))

	cat := New(testLogger(), "node0", dir, initPath)
	db, err := cat.AddDB("seeded")
	require.NoError(t, err)
	_, ok := db.Table("X")
	require.True(t, ok)
}
