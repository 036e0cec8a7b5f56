package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/commands/options"
	"tableflip.dev/dynlink/pkg/printers"
)

func addHistory(topLevel *cobra.Command) {
	ho := &options.HistoryOptions{}
	output := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously generated links.",
		Example: `
dynlink history
dynlink history -n 5 --json
dynlink history --since 1d
dynlink history --clear
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			rt, err := newRuntime(cmd.ErrOrStderr())
			if err != nil {
				return output.HandleError(err)
			}
			if ho.Clear {
				return output.HandleError(rt.svc.ClearHistory())
			}
			entries, err := rt.svc.Entries(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			if entries, err = ho.Filter(entries, time.Now()); err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(entries)
			}
			pp := &printers.PrettyPrint{MaxWidth: 72}
			pp.TitleWithCount("History", len(entries))
			pp.History(entries)
			return nil
		},
	}
	options.AddHistoryArgs(cmd, ho)
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
