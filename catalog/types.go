package catalog

import "github.com/fragsql/fragsql/sqltypes"

// FragType distinguishes horizontal (row-partitioned) from vertical
// (column-partitioned) fragmentation, per spec §3.
type FragType int

const (
	HFRAG FragType = iota
	VFRAG
)

func (t FragType) String() string {
	if t == VFRAG {
		return "VFRAG"
	}
	return "HFRAG"
}

// HFrag is one horizontal fragment: a physical relation at Site holding the
// rows matching the conjunction of Preds, under physical name FragName.
type HFrag struct {
	Site     string
	FragName string
	Preds    []sqltypes.Predicate
}

// VFrag is one vertical fragment: a physical relation at Site holding the
// Cols subset of the table's columns, under physical name FragName. Cols
// always includes the table's join column.
type VFrag struct {
	Site     string
	FragName string
	Cols     []string
}

// TableMeta is the catalog's metadata for one logical table.
type TableMeta struct {
	Name       string
	FragType   FragType
	Columns    []string
	ColumnType map[string]string // "int" | "str"

	// HFrag/VFrag entries, in DDL declaration order — this order is what
	// the insert router's first-match-wins H-fragment assignment iterates
	// (spec §9 Open Questions: the source's hashed-map order is
	// unspecified, so declaration order is used here for determinism).
	HFrags []HFrag
	VFrags []VFrag
}

// JoinColumn returns the column shared by every VFRAG of this table (the
// intersection of all VFrag.Cols), or "" if the table is not VFRAG or has
// no fragments yet.
func (t *TableMeta) JoinColumn() string {
	if t.FragType != VFRAG || len(t.VFrags) == 0 {
		return ""
	}
	shared := make(map[string]int)
	for _, f := range t.VFrags {
		for _, c := range f.Cols {
			shared[c]++
		}
	}
	for _, c := range t.VFrags[0].Cols {
		if shared[c] == len(t.VFrags) {
			return c
		}
	}
	return ""
}

// QualifiedColumns returns every column of the table qualified by its own
// name, in declared order — used to expand "SELECT *".
func (t *TableMeta) QualifiedColumns() []sqltypes.Column {
	out := make([]sqltypes.Column, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = sqltypes.NewColumn(t.Name, c)
	}
	return out
}

// DatabaseMeta is the full in-memory catalog for one logical database.
type DatabaseMeta struct {
	Sites  []string
	Tables map[string]*TableMeta
}

// NewDatabaseMeta builds an empty catalog.
func NewDatabaseMeta() *DatabaseMeta {
	return &DatabaseMeta{Tables: map[string]*TableMeta{}}
}

// AddSite registers a site name if it is not already present.
func (d *DatabaseMeta) AddSite(site string) {
	for _, s := range d.Sites {
		if s == site {
			return
		}
	}
	d.Sites = append(d.Sites, site)
}

// Table looks up a table by name, reporting ok=false on a miss.
func (d *DatabaseMeta) Table(name string) (*TableMeta, bool) {
	t, ok := d.Tables[name]
	return t, ok
}
