package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "validate",
		Short:        "Check a config file and print the effective settings",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "listen:           %s\n", cfg.Server.Listen)
			fmt.Fprintf(out, "path:             %s\n", cfg.Server.Path)
			fmt.Fprintf(out, "websocket path:   %s\n", cfg.Server.WebSocketPath)
			if cfg.Server.HTTP3.Listen != "" {
				fmt.Fprintf(out, "http3 listen:     %s\n", cfg.Server.HTTP3.Listen)
			}
			fmt.Fprintf(out, "session lifetime: %s\n", cfg.Session.Lifetime)
			fmt.Fprintf(out, "coalesce updates: %t\n", cfg.Session.CoalesceUpdates)
			fmt.Fprintf(out, "watchdog period:  %s\n", cfg.Watchdog.Period)
			fmt.Fprintf(out, "report interval:  %s\n", cfg.Watchdog.ReportInterval)
			fmt.Fprintf(out, "log level:        %s\n", cfg.LogLevel())
			return nil
		},
	}
}
