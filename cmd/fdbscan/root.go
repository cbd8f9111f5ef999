package main

import (
	"flag"

	"github.com/shestakovda/fdbscan/config"
	"github.com/spf13/cobra"
)

// Общие настройки всех команд
var cfg config.Config

func newRootCmd() *cobra.Command {
	var file, prefix string

	root := &cobra.Command{
		Use:           "fdbscan",
		Short:         "Offloaded scans of columnar file fragments",
		Long:          "fdbscan sends filter and projection of a fragment scan to an executor next to the stored object and reads back only the matching rows.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err = config.Load(prefix, file)
			return err
		},
	}

	root.PersistentFlags().StringVar(&file, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&prefix, "env-prefix", "FDBSCAN", "Prefix of environment variables")

	// Флаги glog: -v, -logtostderr и т.д.
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		newScanCmd(),
		newInspectCmd(),
		newPutCmd(),
		newServeCmd(),
	)

	return root
}
