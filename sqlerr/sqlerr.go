// Package sqlerr declares the error-kind taxonomy shared by every component.
//
// Kinds are classification, not exception types: a failure is constructed
// with errors.NewKind(...).New(args...) at the point it happens, and callers
// that need to branch on what went wrong compare with Kind.Is(err), never
// with a type assertion.
package sqlerr

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrParse covers malformed SQL or DDL text. Surfaced to the client
	// verbatim as the parser's message, as a one-row result.
	ErrParse = errors.NewKind("parse error: %s")

	// ErrUnknownTable is a lookup miss against the catalog.
	ErrUnknownTable = errors.NewKind("unknown table: %s")

	// ErrUnknownColumn is a lookup miss for a column reference.
	ErrUnknownColumn = errors.NewKind("unknown column: %s")

	// ErrAmbiguousColumn is returned when an unqualified column reference
	// has more than one candidate default table in scope.
	ErrAmbiguousColumn = errors.NewKind("ambiguous column %q: no unique default table")

	// ErrUnknownFragment is a lookup miss for a (site, fragment) pair.
	ErrUnknownFragment = errors.NewKind("unknown fragment %s.%s")

	// ErrConnectionClosed is raised when a site RPC connection cannot be
	// used or reopened for the current request.
	ErrConnectionClosed = errors.NewKind("connection from %s closed")

	// ErrSiteSQL wraps a site-reported SQL error, surfaced verbatim.
	ErrSiteSQL = errors.NewKind("%s")

	// ErrUnsupported marks a statement shape this coordinator does not
	// implement (e.g. a subquery, which is out of scope).
	ErrUnsupported = errors.NewKind("unsupported: %s")

	// ErrBadConfig marks a malformed configuration document.
	ErrBadConfig = errors.NewKind("bad config: %s")
)
