package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"heartrisk/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "heartrisk",
	Short: "Heart disease risk prediction service",
	Long: "heartrisk scores a clinical record with a fitted scaler and classifier\n" +
		"and reports the diagnosis, its probability and a risk level.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.Version = version
}

// loadConfig reads the --config file and HEARTRISK_* overrides. The result
// is not validated yet; commands validate after applying their own flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Read(rootFlags.configPath, os.LookupEnv)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if version != "dev" {
		cfg.Version = version
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
