// Sharkctl controls Black Shark phone coolers from the command line.
//
// Usage:
//
//	sharkctl [command] [flags]
//
// Commands that talk to a device scan for the first supported cooler unless
// an address is configured. Use --mock to drive the simulated cooler instead.
// See 'sharkctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlsorensen/goshark/pkg/config"
	"github.com/mlsorensen/goshark/pkg/logging"
)

var (
	configPath string
	useMock    bool
	logLevel   string

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sharkctl",
	Short: "Black Shark phone cooler control utility",
	Long: `A command line utility for Black Shark phone coolers.

Scans for coolers, streams fan and temperature readings, and sends fan,
cooling, smart mode and LED commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		if err := cfg.InitLogger(); err != nil {
			return err
		}
		cfg.PrintConfig(logging.Named("sharkctl"))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "sharkctl.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use the simulated cooler instead of scanning")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	rootCmd.AddCommand(scanCmd, watchCmd, fanCmd, coolingCmd, smartCmd, offCmd, ledCmd, ledOffCmd, metadataCmd, encodeCmd)
}
