package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowdeck-io/flowdeck/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flowdeck",
	Short: "Flowdeck workflow decision-core tooling",
	Long: `flowdeck validates the decision-relevant configuration of workflow
documents authored in the Flowdeck canvas: Switch routing conditions, Merge
synchronization settings, Code node sandbox limits, and Database node
connection security.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.NewLoader().LoadWithDefaults(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.Logger()
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "flowdeck.yaml", "path to the flowdeck config file")
	rootCmd.AddCommand(lintCmd)
}
