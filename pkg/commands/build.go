package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/commands/options"
	"tableflip.dev/dynlink/pkg/field"
	"tableflip.dev/dynlink/pkg/link"
	"tableflip.dev/dynlink/pkg/printers"
)

type buildOutput struct {
	Long     string   `json:"long"`
	Short    string   `json:"short,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Dropped  []string `json:"dropped,omitempty"`
}

func addBuild(topLevel *cobra.Command) {
	bo := &options.BuildOptions{}
	output := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a dynamic link and shorten it.",
		Example: `
dynlink build --link=https://example.com/promo
dynlink build --link=https://example.com --set source=newsletter --set bundle-id=com.example.app
dynlink build --link=https://example.com --domain=example.page.link --no-shorten --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			rt, err := newRuntime(cmd.ErrOrStderr())
			if err != nil {
				return output.HandleError(err)
			}
			values := bo.Values(rt.cfg.Domain)

			req, err := rt.svc.Assemble(values)
			if err != nil {
				return output.HandleError(err)
			}
			res := link.Result{Long: req.Long}
			if !bo.NoShorten {
				res = req.Shorten(cmd.Context())
				rt.svc.Record(values, res)
				if res.Err != nil {
					return output.HandleError(res.Err)
				}
			}

			dropped := make([]string, len(req.Dropped))
			for i, id := range req.Dropped {
				dropped[i] = id.Key()
			}
			if output.JSON {
				out := buildOutput{Long: res.Long.String(), Warnings: res.Warnings, Dropped: dropped}
				if res.Short != nil {
					out.Short = res.Short.String()
				}
				return output.Print(out)
			}
			pp := &printers.PrettyPrint{MaxWidth: 80}
			pp.Result(res, dropped)
			return nil
		},
	}

	options.AddBuildArgs(cmd, bo)
	options.AddOutputArg(cmd, output)
	_ = cmd.RegisterFlagCompletionFunc("set", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		keys := field.Keys()
		for i := range keys {
			keys[i] += "="
		}
		return keys, cobra.ShellCompDirectiveNoSpace
	})

	topLevel.AddCommand(cmd)
}
