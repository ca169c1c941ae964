// Package schema holds the in-memory catalog of known tables: column names,
// declaration order, type tags, and primary keys. A Registry is populated
// either from a static declaration or by parsing the creation SQL of an
// existing database's tables.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Type tags recognized in declarations. "uuid" is accepted as a tag but is
// stored and compiled identically to "text".
const (
	TypeText = "text"
	TypeInt  = "int"
	TypeUUID = "uuid"
)

var (
	// ErrNotFound is returned for lookups against unknown tables.
	ErrNotFound = errors.New("table not registered")

	// ErrDuplicateTable is returned when a merge finds more than one
	// registered entry for the same table name. Duplicate names are a
	// programming invariant violation, not a recoverable condition.
	ErrDuplicateTable = errors.New("duplicate table registered")
)

// Field is a named column with a type tag, in declaration order.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table describes one table: its fields in declaration order and an optional
// primary key. ColumnOrder is fixed at first registration or discovery and is
// never reordered afterwards; it determines positional value binding.
type Table struct {
	Name        string
	Fields      []Field
	PrimaryKey  string
	ColumnOrder []string
}

// normalize derives ColumnOrder from field declaration order when absent.
func (t *Table) normalize() {
	if len(t.ColumnOrder) > 0 {
		return
	}
	t.ColumnOrder = make([]string, len(t.Fields))
	for i, f := range t.Fields {
		t.ColumnOrder[i] = f.Name
	}
}

// FieldType returns the declared type tag for a column, or "" if unknown.
func (t *Table) FieldType(col string) string {
	for _, f := range t.Fields {
		if f.Name == col {
			return f.Type
		}
	}
	return ""
}

// HasField reports whether col is a declared column of the table.
func (t *Table) HasField(col string) bool {
	return t.FieldType(col) != ""
}

// SQLType maps a type tag to its SQLite column type. uuid compiles to text.
func SQLType(tag string) string {
	if tag == TypeInt {
		return TypeInt
	}
	return TypeText
}

// Registry is an explicit, slice-backed catalog of tables. It is owned by a
// single database handle; nothing here is goroutine-safe, concurrent writers
// must synchronize externally.
type Registry struct {
	tables []*Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register stores a statically declared table, deriving ColumnOrder from
// declaration order when absent. Registering a name that already exists
// replaces the previous declaration.
func (r *Registry) Register(t Table) {
	t.normalize()
	for i, existing := range r.tables {
		if existing.Name == t.Name {
			r.tables[i] = &t
			return
		}
	}
	r.tables = append(r.tables, &t)
}

// Merge folds a discovered table into the registry. A single pre-existing
// entry with the same name is updated in place; more than one pre-existing
// entry is ErrDuplicateTable.
func (r *Registry) Merge(t Table) error {
	t.normalize()
	var matches []*Table
	for _, existing := range r.tables {
		if existing.Name == t.Name {
			matches = append(matches, existing)
		}
	}
	if len(matches) > 1 {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, t.Name)
	}
	if len(matches) == 1 {
		*matches[0] = t
		return nil
	}
	r.tables = append(r.tables, &t)
	return nil
}

// Lookup returns the registered table, or ErrNotFound.
func (r *Registry) Lookup(name string) (*Table, error) {
	for _, t := range r.tables {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ColumnOrder returns the column names of a table in creation order.
func (r *Registry) ColumnOrder(name string) ([]string, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return t.ColumnOrder, nil
}

// Tables returns all registered tables in registration order.
func (r *Registry) Tables() []*Table {
	return r.tables
}

// Names returns the registered table names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tables))
	for i, t := range r.tables {
		names[i] = t.Name
	}
	return names
}

// ParseCreateSQL reverse-engineers a Table from a CREATE TABLE statement as
// stored in sqlite_master. It reads the column list between the outermost
// parentheses, splits on commas, and classifies each token as either a
// PRIMARY KEY(col) directive or a "name type" pair. VARCHAR and text map to
// text, INTEGER and int to int; columns of any other declared type are
// dropped from the parsed field list. That lossiness is a documented
// limitation of the discovery format, kept as-is.
func ParseCreateSQL(name, createSQL string) (Table, error) {
	start := strings.Index(createSQL, "(")
	end := strings.LastIndex(createSQL, ")")
	if start < 0 || end < start {
		return Table{}, fmt.Errorf("unparsable creation SQL for table %s: %q", name, createSQL)
	}

	t := Table{Name: name}
	for _, tok := range strings.Split(createSQL[start+1:end], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(tok), "PRIMARY KEY") {
			if o, c := strings.Index(tok, "("), strings.Index(tok, ")"); o >= 0 && c > o {
				t.PrimaryKey = strings.TrimSpace(tok[o+1 : c])
			}
			continue
		}

		parts := strings.Fields(tok)
		if len(parts) < 2 {
			continue
		}
		col, typ := parts[0], parts[1]
		switch strings.ToUpper(typ) {
		case "VARCHAR", "TEXT":
			t.Fields = append(t.Fields, Field{Name: col, Type: TypeText})
		case "INTEGER", "INT":
			t.Fields = append(t.Fields, Field{Name: col, Type: TypeInt})
		}
		// Inline PRIMARY KEY on a column definition.
		if len(parts) > 2 && strings.Contains(strings.ToUpper(tok), "PRIMARY KEY") {
			t.PrimaryKey = col
		}
	}
	t.normalize()
	return t, nil
}
