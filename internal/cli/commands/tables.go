package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command. It reverse-engineers the
// schema from the database file and renders it.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and their discovered schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, _, err := newHandle(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := h.Open(ctx); err != nil {
				return err
			}
			defer func() { _ = h.Close(false) }()

			if err := h.Discover(ctx); err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Table", "Columns", "Primary Key"})
			for _, tbl := range h.Registry().Tables() {
				t.AppendRow(table.Row{tbl.Name, strings.Join(tbl.ColumnOrder, ", "), tbl.PrimaryKey})
			}
			t.Render()
			return nil
		},
	}
}
