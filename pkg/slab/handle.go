// Package slab is a featherweight, schema-driven convenience layer over
// embedded SQLite. A Handle owns a table registry and at most one ambient
// plus one scoped connection; CRUD operations translate structured filter
// specs into parameterized SQL.
package slab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slab-db/slab/internal/sqlite"
	"github.com/slab-db/slab/pkg/schema"
)

// Handle is a database handle with an explicit connection state machine:
// Unconnected -> Connected (Open or Scoped) -> Unconnected (Close or scope
// End). The current connection is always the scoped one when present, else
// the ambient one, else operations fail with ErrNotConnected.
//
// A Handle is not safe for concurrent use; give each worker its own Handle
// and let the engine's file locking arbitrate writes.
type Handle struct {
	path    string
	timeout time.Duration
	baseDir string

	db    *sql.DB
	ownDB bool

	ambient *session
	scoped  *session

	table    string
	registry *schema.Registry
	validate bool
	logger   *slog.Logger
}

// session is one connection with an open transaction. Work on a session is
// invisible to other connections until committed; closing without commit
// discards it.
type session struct {
	id   string
	conn *sql.Conn
	tx   *sql.Tx
}

// Option configures a Handle.
type Option func(*Handle)

// WithTimeout sets the engine busy timeout applied to every connection.
func WithTimeout(d time.Duration) Option {
	return func(h *Handle) { h.timeout = d }
}

// WithLogger sets the handle's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handle) { h.logger = l }
}

// WithRegistry attaches a pre-populated schema registry. Each handle owns
// its registry; registries are never shared implicitly between handles.
func WithRegistry(r *schema.Registry) Option {
	return func(h *Handle) { h.registry = r }
}

// WithValidation enables pre-write column validation against the registry.
func WithValidation() Option {
	return func(h *Handle) { h.validate = true }
}

// WithTable selects the initial active table.
func WithTable(name string) Option {
	return func(h *Handle) { h.table = name }
}

// WithBaseDir overrides the directory used for bare filenames. The EnvDBDir
// environment variable still takes precedence.
func WithBaseDir(dir string) Option {
	return func(h *Handle) { h.baseDir = dir }
}

// WithDB injects an already-open database pool instead of opening the named
// file. The handle will not close the injected pool. Intended for tests.
func WithDB(db *sql.DB) Option {
	return func(h *Handle) { h.db = db; h.ownDB = false }
}

// New creates a handle for the named database file. The file path is
// resolved per resolvePath; nothing is opened until Open or Scoped.
func New(dbName string, opts ...Option) (*Handle, error) {
	h := &Handle{
		registry: schema.NewRegistry(),
		logger:   slog.Default(),
		ownDB:    true,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.db == nil {
		path, err := resolvePath(dbName, h.baseDir)
		if err != nil {
			return nil, fmt.Errorf("resolving database path: %w", err)
		}
		h.path = path
	}
	return h, nil
}

// Path returns the resolved database file path.
func (h *Handle) Path() string { return h.path }

// Registry returns the handle's schema registry.
func (h *Handle) Registry() *schema.Registry { return h.registry }

// Use selects the active table for subsequent operations.
func (h *Handle) Use(table string) { h.table = table }

// Table returns the currently selected table, or "".
func (h *Handle) Table() string { return h.table }

// resolveTable picks the explicit table when given, else the active table.
func (h *Handle) resolveTable(table string) (string, error) {
	if table != "" {
		return table, nil
	}
	if h.table != "" {
		return h.table, nil
	}
	return "", ErrNoTable
}

func (h *Handle) ensurePool() error {
	if h.db != nil {
		return nil
	}
	db, err := sqlite.Open(h.path, h.timeout)
	if err != nil {
		return fmt.Errorf("opening %s: %w", h.path, err)
	}
	h.db = db
	h.ownDB = true
	return nil
}

// releasePool closes the owned pool once no session is using it. A later
// Open or Scoped reopens it lazily.
func (h *Handle) releasePool() {
	if !h.ownDB || h.db == nil || h.ambient != nil || h.scoped != nil {
		return
	}
	if err := h.db.Close(); err != nil {
		h.logger.Debug("closing pool", "error", err)
	}
	h.db = nil
}

func (h *Handle) newSession(ctx context.Context) (*session, error) {
	if err := h.ensurePool(); err != nil {
		return nil, err
	}
	conn, err := h.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	s := &session{id: uuid.NewString(), conn: conn, tx: tx}
	h.logger.Debug("session opened", "session", s.id, "path", h.path)
	return s, nil
}

// Open establishes the ambient connection. Idempotent: an already-open
// ambient connection is left as is.
func (h *Handle) Open(ctx context.Context) error {
	if h.ambient != nil {
		return nil
	}
	s, err := h.newSession(ctx)
	if err != nil {
		return err
	}
	h.ambient = s
	return nil
}

// current resolves the connection operations run on: scoped wins over
// ambient; neither means ErrNotConnected.
func (h *Handle) current() (*session, error) {
	switch {
	case h.scoped != nil:
		return h.scoped, nil
	case h.ambient != nil:
		return h.ambient, nil
	default:
		return nil, ErrNotConnected
	}
}

// Commit commits the current connection's pending work and starts a fresh
// transaction on it so the session stays usable.
func (h *Handle) Commit(ctx context.Context) error {
	s, err := h.current()
	if err != nil {
		return err
	}
	h.logger.Debug("commit", "session", s.id)
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reopening transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Close closes the current connection, committing first when commit is true
// and discarding pending work otherwise. Closing clears the corresponding
// connection slot, so a subsequent operation fails with ErrNotConnected
// instead of silently reconnecting.
func (h *Handle) Close(commit bool) error {
	s, err := h.current()
	if err != nil {
		return err
	}

	var errs []error
	if commit {
		if err := s.tx.Commit(); err != nil {
			errs = append(errs, fmt.Errorf("commit: %w", err))
		}
	} else if err := s.tx.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("rollback: %w", err))
	}
	if err := s.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing connection: %w", err))
	}

	if s == h.scoped {
		h.scoped = nil
	} else if s == h.ambient {
		h.ambient = nil
	}
	h.releasePool()
	h.logger.Debug("session closed", "session", s.id, "committed", commit)
	return errors.Join(errs...)
}

// Scope bounds the lifetime of a scoped connection. End commits then closes
// on every exit path, so the usual pattern is:
//
//	sc, err := h.Scoped(ctx)
//	if err != nil { ... }
//	defer sc.End()
type Scope struct {
	h    *Handle
	s    *session
	done bool
}

// Scoped acquires a brand-new scoped connection. While present it takes
// precedence over the ambient connection for every operation. Acquiring a
// second scoped connection before the first ends is ErrNestedScope.
func (h *Handle) Scoped(ctx context.Context) (*Scope, error) {
	if h.scoped != nil {
		return nil, ErrNestedScope
	}
	s, err := h.newSession(ctx)
	if err != nil {
		return nil, err
	}
	h.scoped = s
	return &Scope{h: h, s: s}, nil
}

// End commits then closes the scoped connection and clears scoped state.
// It is idempotent and safe to defer; if the scoped connection was already
// closed through Handle.Close, End is a no-op.
func (sc *Scope) End() error {
	if sc.done {
		return nil
	}
	sc.done = true
	if sc.h.scoped != sc.s {
		return nil
	}

	var errs []error
	if err := sc.s.tx.Commit(); err != nil {
		errs = append(errs, fmt.Errorf("commit: %w", err))
	}
	if err := sc.s.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing connection: %w", err))
	}
	sc.h.scoped = nil
	sc.h.releasePool()
	sc.h.logger.Debug("scoped session ended", "session", sc.s.id)
	return errors.Join(errs...)
}
