package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slab-db/slab/internal/cli/config"
	"github.com/slab-db/slab/pkg/schema"
	"github.com/slab-db/slab/pkg/slab"
)

// NewInitCommand creates the init command. It reads a JSON schema
// declaration and creates the declared tables, skipping any that already
// exist.
func NewInitCommand() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create database tables from a JSON schema declaration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(schemaPath)
			if err != nil {
				return fmt.Errorf("opening schema declaration: %w", err)
			}
			defer f.Close()

			decl, err := schema.ParseDeclaration(f)
			if err != nil {
				return fmt.Errorf("parsing schema declaration: %w", err)
			}
			reg := decl.Registry()

			h, _, err := newHandle(cmd, slab.WithRegistry(reg))
			if err != nil {
				return err
			}
			// The declaration may name its own database file; an explicit
			// -d flag wins.
			if !cmd.Flags().Changed("database") && decl.DBName != "" {
				cfg := config.FromContext(cmd.Context())
				cfg.Database = decl.DBName
				h, _, err = newHandle(cmd, slab.WithRegistry(reg))
				if err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if err := h.Open(ctx); err != nil {
				return err
			}
			if err := h.InitSchema(ctx); err != nil {
				_ = h.Close(false)
				return err
			}
			if err := h.Close(true); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "initialized %s (%d tables)\n", h.Path(), len(reg.Names()))
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to JSON schema declaration")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
