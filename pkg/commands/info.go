package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/app"
	"tableflip.dev/dynlink/pkg/config"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about configuration and where history is stored.",
		Example: `
dynlink info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			rt, err := newRuntime(io.Discard)
			if err != nil {
				return err
			}
			return printInfo(cmd.Context(), cmd.OutOrStdout(), rt.cfg, rt.svc)
		},
	}

	topLevel.AddCommand(cmd)
}

func printInfo(ctx context.Context, w io.Writer, cfg *config.Config, svc *app.Service) error {
	if override := os.Getenv("DYNLINK_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(w, "DYNLINK_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(w, "DYNLINK_CONFIG_PATH env var not set")
	}

	file := cfg.File()
	if file == "" {
		file = "(none, using defaults)"
	}
	_, _ = fmt.Fprintln(w, "Config.file:", file)
	_, _ = fmt.Fprintln(w, "Domain:", cfg.Domain)
	_, _ = fmt.Fprintln(w, "Endpoint:", cfg.Endpoint)
	_, _ = fmt.Fprintln(w, "Path length:", cfg.LinkOptions().PathLength)
	if cfg.APIKey == "" {
		_, _ = fmt.Fprintln(w, "API key: not set, shortening will fail")
	} else {
		_, _ = fmt.Fprintln(w, "API key: set")
	}

	if !cfg.History.Enabled {
		_, _ = fmt.Fprintln(w, "History: disabled")
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	entries, err := svc.Entries(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "History: %s (%d links)\n", path, len(entries))
	return nil
}
