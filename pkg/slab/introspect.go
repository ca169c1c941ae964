package slab

import (
	"context"
	"fmt"
	"strings"

	"github.com/slab-db/slab/pkg/filter"
	"github.com/slab-db/slab/pkg/schema"
)

// catalogTable is the engine's internal catalog of schema objects.
const catalogTable = "sqlite_master"

// catalogRead queries the catalog through the engine's own Read so the
// header comes from real statement metadata.
func (h *Handle) catalogRead(ctx context.Context, filters filter.Spec) (*Result, error) {
	return h.Read(ctx, catalogTable, filters, IncludeHeader())
}

func columnIndex(cols []string, name string) (int, error) {
	for i, c := range cols {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("catalog result missing %q column", name)
}

// TableNames lists the tables recorded in the catalog.
func (h *Handle) TableNames(ctx context.Context) ([]string, error) {
	res, err := h.catalogRead(ctx, filter.Spec{filter.Eq("type", "table")})
	if err != nil {
		return nil, err
	}
	nameIdx, err := columnIndex(res.Columns, "name")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		names = append(names, fmt.Sprint(row[nameIdx]))
	}
	return names, nil
}

// TableExists reports whether the catalog records a table with that name.
func (h *Handle) TableExists(ctx context.Context, name string) (bool, error) {
	res, err := h.Read(ctx, catalogTable, filter.Spec{
		filter.Eq("type", "table"),
		filter.Eq("name", name),
	})
	if err != nil {
		return false, err
	}
	return len(res.Rows) > 0, nil
}

// Discover reverse-engineers the schema of every table in the database and
// merges it into the handle's registry. Columns of types outside text/int
// are dropped by the creation-SQL parser; see schema.ParseCreateSQL.
func (h *Handle) Discover(ctx context.Context) error {
	res, err := h.catalogRead(ctx, filter.Spec{filter.Eq("type", "table")})
	if err != nil {
		return err
	}
	nameIdx, err := columnIndex(res.Columns, "name")
	if err != nil {
		return err
	}
	sqlIdx, err := columnIndex(res.Columns, "sql")
	if err != nil {
		return err
	}

	for _, row := range res.Rows {
		name := fmt.Sprint(row[nameIdx])
		createSQL, _ := row[sqlIdx].(string)
		if createSQL == "" {
			continue
		}
		tbl, err := schema.ParseCreateSQL(name, createSQL)
		if err != nil {
			return fmt.Errorf("discovering %s: %w", name, err)
		}
		if err := h.registry.Merge(tbl); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable registers the table and creates it when it does not already
// exist. Re-creating an existing table is a no-op, so schema initialization
// is idempotent.
func (h *Handle) CreateTable(ctx context.Context, t schema.Table) error {
	h.registry.Register(t)
	tbl, err := h.registry.Lookup(t.Name)
	if err != nil {
		return err
	}

	exists, err := h.TableExists(ctx, tbl.Name)
	if err != nil {
		return err
	}
	if exists {
		h.logger.Debug("table exists, creation skipped", "table", tbl.Name)
		return nil
	}

	cols := make([]string, 0, len(tbl.ColumnOrder))
	for _, col := range tbl.ColumnOrder {
		def := col + " " + schema.SQLType(tbl.FieldType(col))
		if col == tbl.PrimaryKey {
			def += " PRIMARY KEY"
		}
		cols = append(cols, def)
	}

	s, err := h.current()
	if err != nil {
		return err
	}
	query := fmt.Sprintf("CREATE TABLE %s (%s)", tbl.Name, strings.Join(cols, ","))
	h.logger.Debug("creating table", "session", s.id, "query", query)
	_, err = s.tx.ExecContext(ctx, query)
	return err
}

// InitSchema creates every table registered in the handle's registry.
func (h *Handle) InitSchema(ctx context.Context) error {
	for _, t := range h.registry.Tables() {
		if err := h.CreateTable(ctx, *t); err != nil {
			return fmt.Errorf("initializing %s: %w", t.Name, err)
		}
	}
	return nil
}
