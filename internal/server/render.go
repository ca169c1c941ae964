package server

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/slab-db/slab/pkg/slab"
)

// renderer turns query results into a response body. The format is fixed at
// server construction, matching the long-standing one-format-per-server
// behavior clients script against.
type renderer interface {
	contentType() string
	welcome(w io.Writer, tables []string) error
	records(w io.Writer, cols []string, rows []slab.Row) error
}

type jsonRenderer struct{}

func (jsonRenderer) contentType() string { return "application/json" }

func (jsonRenderer) welcome(w io.Writer, tables []string) error {
	if tables == nil {
		tables = []string{}
	}
	return json.NewEncoder(w).Encode(map[string]any{
		"message": "Welcome to slab",
		"status":  200,
		"tables":  tables,
	})
}

// records emits an array of arrays with the header as the first element.
func (jsonRenderer) records(w io.Writer, cols []string, rows []slab.Row) error {
	out := make([]any, 0, len(rows)+1)
	out = append(out, cols)
	for _, row := range rows {
		out = append(out, row)
	}
	return json.NewEncoder(w).Encode(out)
}

type htmlRenderer struct{}

func (htmlRenderer) contentType() string { return "text/html; charset=UTF-8" }

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body>
<h1>Welcome to slab</h1>
<ul>
{{- range .}}
<li><a href="/tables/{{.}}">{{.}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

var recordsTmpl = template.Must(template.New("records").Parse(`<!DOCTYPE html>
<html>
<body>
<table border="1">
<tr>{{range .Cols}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>
</body>
</html>
`))

func (htmlRenderer) welcome(w io.Writer, tables []string) error {
	return welcomeTmpl.Execute(w, tables)
}

func (htmlRenderer) records(w io.Writer, cols []string, rows []slab.Row) error {
	return recordsTmpl.Execute(w, struct {
		Cols []string
		Rows []slab.Row
	}{cols, rows})
}
