package slab

import (
	"context"
	"fmt"
	"strings"

	"github.com/slab-db/slab/pkg/filter"
)

// Row is one result row, positionally ordered by the executed statement's
// column order.
type Row []any

// Result is an ordered set of rows. Columns is populated from the executed
// statement's result metadata when the header was requested, so it reflects
// the actual returned columns even for catalog queries.
type Result struct {
	Columns []string
	Rows    []Row
}

type readOpts struct {
	limit         *int
	offset        *int
	includeHeader bool
}

// ReadOption adjusts a read.
type ReadOption func(*readOpts)

// WithLimit caps the number of returned rows. The LIMIT clause is only
// emitted when this option is given.
func WithLimit(n int) ReadOption {
	return func(o *readOpts) { o.limit = &n }
}

// WithOffset skips n rows. The OFFSET clause is only emitted when this
// option is given.
func WithOffset(n int) ReadOption {
	return func(o *readOpts) { o.offset = &n }
}

// IncludeHeader requests the column names of the executed statement.
func IncludeHeader() ReadOption {
	return func(o *readOpts) { o.includeHeader = true }
}

// specValue finds the bound value for col in an equality spec.
func specValue(vals filter.Spec, col string) (any, bool) {
	for _, c := range vals {
		if c.Col == col {
			return c.Value(), true
		}
	}
	return nil, false
}

// validateWrite rejects columns absent from the table's registered schema.
// Only active when the handle was built WithValidation.
func (h *Handle) validateWrite(table string, vals filter.Spec) error {
	if !h.validate {
		return nil
	}
	tbl, err := h.registry.Lookup(table)
	if err != nil {
		return err
	}
	var unknown []string
	for _, c := range vals {
		if !tbl.HasField(c.Col) {
			unknown = append(unknown, c.Col)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, strings.Join(unknown, ", "))
	}
	return nil
}

// Create inserts one record. Values are bound positionally in the table's
// registered column order; fields absent from vals are bound as the empty
// string, not NULL (long-standing behavior that callers depend on).
// Constraint violations propagate from the engine unmodified.
func (h *Handle) Create(ctx context.Context, table string, vals filter.Spec) error {
	tbl, err := h.resolveTable(table)
	if err != nil {
		return err
	}
	if err := h.validateWrite(tbl, vals); err != nil {
		return err
	}
	for _, c := range vals {
		if c.IsRange() {
			return fmt.Errorf("create: range condition not allowed for column %s", c.Col)
		}
	}

	order, err := h.registry.ColumnOrder(tbl)
	if err != nil {
		return err
	}
	s, err := h.current()
	if err != nil {
		return err
	}

	args := make([]any, len(order))
	for i, col := range order {
		if v, ok := specValue(vals, col); ok {
			args[i] = v
		} else {
			args[i] = ""
		}
	}

	query := fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		tbl, strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", "))
	h.logger.Debug("create", "session", s.id, "query", query)
	_, err = s.tx.ExecContext(ctx, query, args...)
	return err
}

// Read fetches all rows matching filters. LIMIT and OFFSET clauses are
// appended only when explicitly requested.
func (h *Handle) Read(ctx context.Context, table string, filters filter.Spec, opts ...ReadOption) (*Result, error) {
	tbl, err := h.resolveTable(table)
	if err != nil {
		return nil, err
	}
	s, err := h.current()
	if err != nil {
		return nil, err
	}

	var o readOpts
	for _, opt := range opts {
		opt(&o)
	}

	query := "SELECT * FROM " + tbl
	where, args := filters.WhereClause()
	if where != "" {
		query += " " + where
	}
	if o.limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *o.limit)
	}
	if o.offset != nil {
		query += fmt.Sprintf(" OFFSET %d", *o.offset)
	}

	h.logger.Debug("read", "session", s.id, "query", query)
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if o.includeHeader {
		res.Columns = cols
	}
	for rows.Next() {
		row := make(Row, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}

// ReadFirst fetches the first matching row, or nil when nothing matches.
// The header, when requested, is returned alongside rather than prepended.
func (h *Handle) ReadFirst(ctx context.Context, table string, filters filter.Spec, opts ...ReadOption) (Row, []string, error) {
	res, err := h.Read(ctx, table, filters, append(opts, WithLimit(1))...)
	if err != nil {
		return nil, nil, err
	}
	if len(res.Rows) == 0 {
		return nil, res.Columns, nil
	}
	return res.Rows[0], res.Columns, nil
}

// Update rewrites the matching rows. cond is mandatory: an empty condition
// would rewrite the whole table, so it fails with ErrEmptyCondition before
// any SQL executes.
func (h *Handle) Update(ctx context.Context, table string, cond, vals filter.Spec) error {
	tbl, err := h.resolveTable(table)
	if err != nil {
		return err
	}
	if len(cond) == 0 {
		return ErrEmptyCondition
	}
	if err := h.validateWrite(tbl, vals); err != nil {
		return err
	}
	s, err := h.current()
	if err != nil {
		return err
	}

	set, setArgs := vals.Predicate(filter.JoinComma)
	where, condArgs := cond.WhereClause()
	query := fmt.Sprintf("UPDATE %s SET %s %s", tbl, set, where)
	h.logger.Debug("update", "session", s.id, "query", query)
	_, err = s.tx.ExecContext(ctx, query, append(setArgs, condArgs...)...)
	return err
}

// Delete removes the matching rows. An empty filter set deletes every row
// in the table; callers must pass filters to scope the operation.
func (h *Handle) Delete(ctx context.Context, table string, filters filter.Spec) error {
	tbl, err := h.resolveTable(table)
	if err != nil {
		return err
	}
	s, err := h.current()
	if err != nil {
		return err
	}

	query := "DELETE FROM " + tbl
	where, args := filters.WhereClause()
	if where != "" {
		query += " " + where
	}
	h.logger.Debug("delete", "session", s.id, "query", query)
	_, err = s.tx.ExecContext(ctx, query, args...)
	return err
}
