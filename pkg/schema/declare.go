package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Declaration is the JSON schema declaration format:
//
//	{ "db_name": "reviews.db",
//	  "tables": [ { "name": "reviews",
//	                "fields": { "rid": "uuid", "header": "text", "rating": "int" },
//	                "primary_key": "rid" } ] }
//
// Field order inside "fields" is significant: it fixes the column order used
// for positional value binding, so decoding preserves it.
type Declaration struct {
	DBName string  `json:"db_name"`
	Tables []Table `json:"tables"`
}

// UnmarshalJSON decodes a table declaration keeping the "fields" object in
// document order. encoding/json maps would lose it.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string          `json:"name"`
		Fields     json.RawMessage `json:"fields"`
		PrimaryKey string          `json:"primary_key"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Name = raw.Name
	t.PrimaryKey = raw.PrimaryKey
	t.Fields = nil
	t.ColumnOrder = nil

	if len(raw.Fields) == 0 {
		return nil
	}
	fields, err := decodeOrderedFields(raw.Fields)
	if err != nil {
		return fmt.Errorf("table %s: %w", raw.Name, err)
	}
	t.Fields = fields
	t.normalize()
	return nil
}

// decodeOrderedFields walks the token stream of a JSON object so that key
// order survives decoding.
func decodeOrderedFields(data []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("fields must be a JSON object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		typ, ok := valTok.(string)
		if !ok {
			return nil, fmt.Errorf("field %s: type tag must be a string", key)
		}
		switch typ {
		case TypeText, TypeInt, TypeUUID:
		default:
			return nil, fmt.Errorf("field %s: unknown type tag %q", key, typ)
		}
		fields = append(fields, Field{Name: key, Type: typ})
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// ParseDeclaration decodes a schema declaration document.
func ParseDeclaration(r io.Reader) (*Declaration, error) {
	var decl Declaration
	if err := json.NewDecoder(r).Decode(&decl); err != nil {
		return nil, fmt.Errorf("decoding schema declaration: %w", err)
	}
	return &decl, nil
}

// Registry builds a registry holding every table of the declaration.
func (d *Declaration) Registry() *Registry {
	r := NewRegistry()
	for _, t := range d.Tables {
		r.Register(t)
	}
	return r
}
