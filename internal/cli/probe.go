package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/thinui/internal/core/observability/log"
	"github.com/zeusync/thinui/sdk/go/client"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	URL     string
	Page    string
	Timeout time.Duration
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Open a session on a running server and print its widget tree",
		Long: `Open a session, apply the first instruction batch, print the mirrored
tree and kill the session.

Example:
  thinui probe --url http://localhost:8080/api`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()
			return probe(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://localhost:8080/api", "action endpoint URL")
	cmd.Flags().StringVar(&opts.Page, "page", "", "page path (default page when empty)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "overall timeout")

	return cmd
}

func probe(ctx context.Context, opts *ProbeOptions, cmd *cobra.Command) error {
	cfg := client.DefaultClientConfig()
	cfg.ServerURL = opts.URL
	cfg.Page = opts.Page
	cfg.RequestTimeout = opts.Timeout

	level := log.LevelWarn
	if opts.LogLevel != "" {
		var err error
		if level, err = log.ParseLevel(opts.LogLevel); err != nil {
			return err
		}
	}
	cfg.LogLevel = level

	c, err := client.NewClient(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close(context.Background()) }()

	if err = c.Connect(ctx); err != nil {
		return err
	}
	n, err := c.Sync(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s: %d instructions\n", c.Session(), n)
	fmt.Fprint(out, c.View().Dump())
	return nil
}
