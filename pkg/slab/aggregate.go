package slab

import (
	"context"
	"fmt"

	"github.com/slab-db/slab/pkg/filter"
)

// aggregate runs SELECT fn(field) with an optional predicate. Precondition
// failures surface as errors; execution failures and empty matches yield an
// absent value, since "no rows" is a well-defined aggregate outcome.
func (h *Handle) aggregate(ctx context.Context, fn, field, table string, filters filter.Spec) (any, error) {
	tbl, err := h.resolveTable(table)
	if err != nil {
		return nil, err
	}
	s, err := h.current()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s(%s) FROM %s", fn, field, tbl)
	where, args := filters.WhereClause()
	if where != "" {
		query += " " + where
	}

	var v any
	if err := s.tx.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		h.logger.Debug("aggregate unavailable", "session", s.id, "query", query, "error", err)
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	return v, nil
}

// requireField checks that field is a registered column of the table.
func (h *Handle) requireField(table, field string) (string, error) {
	tbl, err := h.resolveTable(table)
	if err != nil {
		return "", err
	}
	t, err := h.registry.Lookup(tbl)
	if err != nil {
		return "", err
	}
	if !t.HasField(field) {
		return "", fmt.Errorf("%w: %s has no column %s", ErrUnknownColumn, tbl, field)
	}
	return tbl, nil
}

// Count returns the number of matching rows.
func (h *Handle) Count(ctx context.Context, table string, filters filter.Spec) (int64, error) {
	v, err := h.aggregate(ctx, "COUNT", "*", table, filters)
	if err != nil {
		return 0, err
	}
	if n, ok := v.(int64); ok {
		return n, nil
	}
	return 0, nil
}

// Min returns the smallest value of field among the matching rows, or nil
// when nothing matches.
func (h *Handle) Min(ctx context.Context, field, table string, filters filter.Spec) (any, error) {
	tbl, err := h.requireField(table, field)
	if err != nil {
		return nil, err
	}
	return h.aggregate(ctx, "MIN", field, tbl, filters)
}

// Max returns the largest value of field among the matching rows, or nil
// when nothing matches.
func (h *Handle) Max(ctx context.Context, field, table string, filters filter.Spec) (any, error) {
	tbl, err := h.requireField(table, field)
	if err != nil {
		return nil, err
	}
	return h.aggregate(ctx, "MAX", field, tbl, filters)
}

// Avg returns the mean value of field among the matching rows, or nil when
// nothing matches.
func (h *Handle) Avg(ctx context.Context, field, table string, filters filter.Spec) (any, error) {
	tbl, err := h.requireField(table, field)
	if err != nil {
		return nil, err
	}
	return h.aggregate(ctx, "AVG", field, tbl, filters)
}
