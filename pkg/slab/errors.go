package slab

import "errors"

// Precondition errors. These are returned before any SQL executes.
// Engine-level failures (constraint violations, malformed SQL) propagate
// from the driver unmodified.
var (
	// ErrNoTable means no table was resolvable for an operation: none was
	// passed and the handle has no active table selected.
	ErrNoTable = errors.New("no table set for operation")

	// ErrNotConnected means an operation was attempted with neither an
	// ambient nor a scoped connection open.
	ErrNotConnected = errors.New("not connected to database")

	// ErrNestedScope means a scoped connection was requested while one is
	// already active on the same handle.
	ErrNestedScope = errors.New("nested scoped connection not allowed")

	// ErrUnknownColumn means a validated write named columns absent from
	// the table's schema, or an aggregate named a column the table does
	// not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrEmptyCondition means Update was called without a condition, which
	// would silently rewrite the whole table.
	ErrEmptyCondition = errors.New("update requires a non-empty condition")
)
