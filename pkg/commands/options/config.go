package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/config"
)

// ConfigOptions selects the configuration file.
type ConfigOptions struct {
	Path string
}

// AddConfigArg registers --config as a persistent flag.
func AddConfigArg(cmd *cobra.Command, o *ConfigOptions) {
	cmd.PersistentFlags().StringVar(&o.Path, "config", "",
		"Path to a config file. Defaults to .dynlink.yaml in $DYNLINK_CONFIG_PATH, ./ or $HOME.")
}

// Load reads the configuration.
func (o *ConfigOptions) Load() (*config.Config, error) {
	return config.Load(o.Path)
}
