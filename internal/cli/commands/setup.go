// Package commands implements the slab subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/slab-db/slab/internal/cli/config"
	"github.com/slab-db/slab/pkg/slab"
)

// newHandle builds a handle from the command's configuration.
func newHandle(cmd *cobra.Command, opts ...slab.Option) (*slab.Handle, *config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	logger := config.LoggerFrom(cmd.Context())

	base := []slab.Option{
		slab.WithLogger(logger),
		slab.WithTimeout(cfg.Timeout()),
	}
	if cfg.Location != "" {
		base = append(base, slab.WithBaseDir(cfg.Location))
	}

	h, err := slab.New(cfg.Database, append(base, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return h, cfg, nil
}
