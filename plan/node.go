// Package plan holds the relational-algebra plan node sum type of spec §3:
// Projection, Selection, Rename, ReadTable, NJoin and Union, each sharing a
// common Base of {disabled, skipped, execSite}.
//
// The teacher's own plan package (sql/plan) downcasts from a virtual base;
// the idiomatic Go shape used here is a closed Node interface plus a
// type switch per pass (optimizer.PushDown, optimizer.Copy,
// optimizer.OptimizeExecNode, rowexec.Execute) — see spec §9.
package plan

// Node is the common interface every plan node implements. The six
// concrete types (Projection, Selection, Rename, ReadTable, NJoin, Union)
// are the only implementations; passes over a plan type-switch on them.
type Node interface {
	// Disabled reports whether this subtree is known to produce zero rows.
	Disabled() bool
	SetDisabled(bool)
	// Skipped reports whether this node is a push-down no-op that should
	// be elided when the plan is materialized for execution.
	Skipped() bool
	SetSkipped(bool)
	// ExecSite is the single site this subtree can run on entirely, or ""
	// if it must be combined at the coordinator.
	ExecSite() string
	SetExecSite(string)
}

// Base is embedded by every concrete node and implements the bookkeeping
// fields common to all of them.
type Base struct {
	disabled bool
	skipped  bool
	execSite string
}

func (b *Base) Disabled() bool         { return b.disabled }
func (b *Base) SetDisabled(v bool)     { b.disabled = v }
func (b *Base) Skipped() bool          { return b.skipped }
func (b *Base) SetSkipped(v bool)      { b.skipped = v }
func (b *Base) ExecSite() string       { return b.execSite }
func (b *Base) SetExecSite(v string)   { b.execSite = v }
