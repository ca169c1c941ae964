package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/slab-db/slab/pkg/slab"
)

// Store is the narrow slice of the engine the server needs.
type Store interface {
	// TableNames lists the tables in the database.
	TableNames(ctx context.Context) ([]string, error)
	// ReadTable returns a table's column names and all of its rows.
	ReadTable(ctx context.Context, name string) ([]string, []slab.Row, error)
}

// FileStore serves a database file, opening a short-lived scoped connection
// per call so concurrent requests never share a session.
type FileStore struct {
	Path    string
	Timeout time.Duration
	Logger  *slog.Logger
}

func (fs *FileStore) handle() (*slab.Handle, error) {
	opts := []slab.Option{slab.WithTimeout(fs.Timeout)}
	if fs.Logger != nil {
		opts = append(opts, slab.WithLogger(fs.Logger))
	}
	return slab.New(fs.Path, opts...)
}

// TableNames implements Store.
func (fs *FileStore) TableNames(ctx context.Context) (_ []string, err error) {
	h, err := fs.handle()
	if err != nil {
		return nil, err
	}
	sc, err := h.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if endErr := sc.End(); err == nil {
			err = endErr
		}
	}()

	return h.TableNames(ctx)
}

// ReadTable implements Store.
func (fs *FileStore) ReadTable(ctx context.Context, name string) (_ []string, _ []slab.Row, err error) {
	h, err := fs.handle()
	if err != nil {
		return nil, nil, err
	}
	sc, err := h.Scoped(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if endErr := sc.End(); err == nil {
			err = endErr
		}
	}()

	res, err := h.Read(ctx, name, nil, slab.IncludeHeader())
	if err != nil {
		return nil, nil, err
	}
	return res.Columns, res.Rows, nil
}
