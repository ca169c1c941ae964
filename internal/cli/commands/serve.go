package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slab-db/slab/internal/cli/config"
	"github.com/slab-db/slab/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve table contents over HTTP as JSON or HTML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, cfg, err := newHandle(cmd)
			if err != nil {
				return err
			}
			logger := config.LoggerFrom(cmd.Context())
			path := h.Path()

			store := &server.FileStore{
				Path:    path,
				Timeout: cfg.Timeout(),
				Logger:  logger,
			}
			srv := server.NewServer(server.Config{
				Store:  store,
				Port:   cfg.Port,
				HTML:   cfg.HTML,
				Watch:  cfg.Watch,
				DBPath: path,
				Logger: logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().IntP("port", "p", config.DefaultPort, "port to listen on")
	cmd.Flags().Bool("html", false, "render HTML tables instead of JSON")
	cmd.Flags().Bool("watch", false, "refresh the table list when the database file changes")
	return cmd
}
