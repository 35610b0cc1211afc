package commands

import (
	"elite-gym/internal/config"
	"elite-gym/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *logging.Logger

	catalogPath string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gymctl",
		Short:        "Operator tooling for the Elite Gym lead service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.LoadConfig()
			logger = logging.New(cfg.LogLevel)
			if cmd.Flags().Changed("catalog") {
				cfg.CatalogPath = catalogPath
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "plan catalog YAML (default: CATALOG_PATH or the embedded catalog)")

	root.AddCommand(plansCmd(), previewCmd(), migrateCmd(), dispatchesCmd())
	return root
}

func Execute() error {
	return newRootCmd().Execute()
}
