// Package filter builds parameterized SQL predicates from column conditions.
//
// A Spec is an ordered list of per-column conditions. The same Spec type is
// used for read filters, update WHERE conditions, and update SET values; only
// the join operator differs (AND for predicates, comma for SET lists).
package filter

import "strings"

// Join operators for Spec.Predicate.
const (
	JoinAnd   = " AND "
	JoinComma = ", "
)

type op int

const (
	opEq op = iota
	opBetween
)

// Cond is a single column condition: either an equality against one value or
// an inclusive BETWEEN over a [lo, hi] range.
type Cond struct {
	Col string

	op  op
	val any
	lo  any
	hi  any
}

// Eq returns an equality condition (col = value).
func Eq(col string, value any) Cond {
	return Cond{Col: col, op: opEq, val: value}
}

// Between returns an inclusive range condition (col BETWEEN lo AND hi).
func Between(col string, lo, hi any) Cond {
	return Cond{Col: col, op: opBetween, lo: lo, hi: hi}
}

// Value returns the bound value of an equality condition. For range
// conditions it returns the low bound.
func (c Cond) Value() any {
	if c.op == opBetween {
		return c.lo
	}
	return c.val
}

// IsRange reports whether the condition is a BETWEEN range.
func (c Cond) IsRange() bool {
	return c.op == opBetween
}

// Spec is an ordered set of conditions. Order determines the order of
// placeholder bindings in the generated SQL.
type Spec []Cond

// Cols returns the column names in condition order.
func (s Spec) Cols() []string {
	cols := make([]string, len(s))
	for i, c := range s {
		cols[i] = c.Col
	}
	return cols
}

// Predicate compiles the spec into a SQL fragment joined by joiner, with one
// positional placeholder per bound value. An empty spec yields an empty
// fragment and no args.
func (s Spec) Predicate(joiner string) (string, []any) {
	if len(s) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(s))
	args := make([]any, 0, len(s))
	for _, c := range s {
		switch c.op {
		case opBetween:
			clauses = append(clauses, c.Col+" BETWEEN ? AND ?")
			args = append(args, c.lo, c.hi)
		default:
			clauses = append(clauses, c.Col+" = ?")
			args = append(args, c.val)
		}
	}
	return strings.Join(clauses, joiner), args
}

// WhereClause compiles the spec into a full WHERE clause, or an empty string
// for an empty spec so callers can omit the clause entirely.
func (s Spec) WhereClause() (string, []any) {
	pred, args := s.Predicate(JoinAnd)
	if pred == "" {
		return "", nil
	}
	return "WHERE " + pred, args
}
