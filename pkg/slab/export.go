package slab

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/slab-db/slab/pkg/filter"
)

// Export streams a reconstruction script for the whole database: one SQL
// statement per line, DDL first, then the data as INSERT statements. Feeding
// the script line by line to a fresh database rebuilds it. schemaOnly drops
// the INSERT lines, yielding empty tables with identical schemas.
//
// The one-statement-per-line format cannot represent text values containing
// newlines; that is a limitation of the dump format itself.
func (h *Handle) Export(ctx context.Context, w io.Writer, schemaOnly bool) error {
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

	if _, err := fmt.Fprintln(w, "BEGIN TRANSACTION;"); err != nil {
		return err
	}

	for _, row := range res.Rows {
		name := fmt.Sprint(row[nameIdx])
		createSQL, _ := row[sqlIdx].(string)
		if strings.HasPrefix(name, "sqlite_") || createSQL == "" {
			// Internal tables are maintained by the engine itself.
			continue
		}
		if _, err := fmt.Fprintf(w, "%s;\n", oneLine(createSQL)); err != nil {
			return err
		}
		if schemaOnly {
			continue
		}
		if err := h.exportRows(ctx, w, name); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(w, "COMMIT;")
	return err
}

// Restore replays a reconstruction script produced by Export against the
// current session, one statement per line. The script's own transaction
// markers are skipped: restored work lands in the session's transaction and
// follows the usual Commit/Close rules.
func (h *Handle) Restore(ctx context.Context, r io.Reader) error {
	s, err := h.current()
	if err != nil {
		return err
	}

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		stmt := strings.TrimSpace(sc.Text())
		switch {
		case stmt == "", stmt == "BEGIN TRANSACTION;", stmt == "COMMIT;":
			continue
		}
		if _, err := s.tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("restore line %d: %w", line, err)
		}
	}
	return sc.Err()
}

// ExportFile writes the reconstruction script to a file.
func (h *Handle) ExportFile(ctx context.Context, path string, schemaOnly bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := h.Export(ctx, f, schemaOnly); err != nil {
		return err
	}
	return f.Close()
}

func (h *Handle) exportRows(ctx context.Context, w io.Writer, table string) error {
	// Rows are buffered before writing: the session's single connection
	// cannot start another query while a result set is open.
	res, err := h.Read(ctx, table, nil)
	if err != nil {
		return err
	}
	for _, row := range res.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = sqlLiteral(v)
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %q VALUES(%s);\n", table, strings.Join(vals, ",")); err != nil {
			return err
		}
	}
	return nil
}

// oneLine collapses a possibly multi-line statement onto a single line.
func oneLine(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

// sqlLiteral renders a scanned value as a SQL literal.
func sqlLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case []byte:
		return "X'" + hex.EncodeToString(x) + "'"
	case time.Time:
		return quoteString(x.UTC().Format(time.RFC3339Nano))
	case string:
		return quoteString(x)
	default:
		return quoteString(fmt.Sprint(x))
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
