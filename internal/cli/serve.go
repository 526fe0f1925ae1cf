package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/thinui/internal/core/application"
	"github.com/zeusync/thinui/internal/injector"
	"github.com/zeusync/thinui/internal/pages/demo"
	"github.com/zeusync/thinui/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo page",
		Long: `Start the thinui server with the demo page registered at "/".

Example:
  thinui serve --listen :8080
  thinui serve --config thinui.yaml --log-level debug`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions, opts.Listen)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", "", "listen address override, e.g. :8080")

	return cmd
}

func serve(ctx context.Context, cfg server.Config) error {
	srv, err := injector.InitializeServer(cfg, injector.Pages{
		application.DefaultPage: demo.New(),
	})
	if err != nil {
		return err
	}

	if err = srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(opts *RootOptions, listen string) (server.Config, error) {
	cfg := server.DefaultConfig()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = server.LoadConfig(opts.ConfigPath); err != nil {
			return server.Config{}, err
		}
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, cfg.Validate()
}
