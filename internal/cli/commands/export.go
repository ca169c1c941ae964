package commands

import (
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command. It dumps the database as a
// line-based SQL reconstruction script.
func NewExportCommand() *cobra.Command {
	var (
		outPath    string
		schemaOnly bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the database as a SQL script, one statement per line",
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

			if outPath != "" {
				return h.ExportFile(ctx, outPath, schemaOnly)
			}
			return h.Export(ctx, cmd.OutOrStdout(), schemaOnly)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the script to a file instead of stdout")
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "dump DDL only, no row data")
	return cmd
}
