package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/app"
	"tableflip.dev/dynlink/pkg/commands/options"
	"tableflip.dev/dynlink/pkg/printers"
)

func addParams(topLevel *cobra.Command) {
	output := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "params",
		Aliases: []string{"parameters"},
		Short:   "List optional parameters in display order.",
		Example: `
dynlink params
dynlink params --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := (&app.Service{}).Layout()
			if output.JSON {
				return output.Print(rows)
			}
			pp := &printers.PrettyPrint{}
			pp.Parameters(rows)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
