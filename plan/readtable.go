package plan

import "github.com/fragsql/fragsql/sqltypes"

// ReadTable is a leaf reading one physical fragment at one site. OrigTable
// is the logical table this fragment belongs to (spec: orig_logical_table);
// Cols accumulates the columns the rest of the plan actually needs from
// this fragment, in first-demanded order; Preds accumulates the predicates
// applicable to this fragment.
type ReadTable struct {
	Base
	Site      string
	FragName  string
	OrigTable string
	Cols      []sqltypes.Column
	Preds     []sqltypes.Predicate
}

// NewReadTable builds a ReadTable leaf for site.frag, belonging to
// logical table origTable.
func NewReadTable(site, frag, origTable string) *ReadTable {
	rt := &ReadTable{Site: site, FragName: frag, OrigTable: origTable}
	rt.execSite = site
	return rt
}

// AddCols extends Cols with any of the given columns not already present,
// preserving first-seen order (spec §4.3: "extend cols with required_cols").
func (r *ReadTable) AddCols(cols []sqltypes.Column) {
	seen := make(map[sqltypes.Column]bool, len(r.Cols))
	for _, c := range r.Cols {
		seen[c] = true
	}
	for _, c := range cols {
		if !seen[c] {
			r.Cols = append(r.Cols, c)
			seen[c] = true
		}
	}
}

// AddPreds appends preds to the fragment's own predicate list.
func (r *ReadTable) AddPreds(preds []sqltypes.Predicate) {
	r.Preds = append(r.Preds, preds...)
}

// SiteQualifiedTable is the site.frag pair, as spec.md's ReadTable field
// name (site_qualified_table) describes it.
func (r *ReadTable) SiteQualifiedTable() string {
	return r.Site + "." + r.FragName
}
