package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/dynlink/pkg/commands/options"
)

var (
	co = &options.ConfigOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "dynlink",
		Short: base.Wrap80("Build and shorten Firebase Dynamic Links from the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddConfigArg(cmd, co)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addBuild(topLevel)
	addParams(topLevel)
	addHistory(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
