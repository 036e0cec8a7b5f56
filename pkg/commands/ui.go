package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/form"
	"tableflip.dev/dynlink/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based link builder",
		Example: `
dynlink ui
`,
		ValidArgs: []string{},
		Args:      cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fd := os.Stdout.Fd()
			if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return errors.New("ui requires a terminal; use dynlink build instead")
			}
			cmd.SilenceUsage = true

			cfg, err := co.Load()
			if err != nil {
				return err
			}
			logFile, err := cfg.OpenLogFile()
			if err != nil {
				return err
			}
			defer logFile.Close()

			rt, err := wire(cfg, logFile)
			if err != nil {
				return err
			}
			defaults := form.DefaultDefaults()
			defaults.Domain = rt.cfg.Domain
			defaults.BundleID = rt.cfg.BundleID

			screen, err := rt.svc.Screen(defaults)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), rt.svc, screen, tui.WithLogger(rt.log))
		},
	}

	topLevel.AddCommand(cmd)
}
