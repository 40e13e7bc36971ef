package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"heartrisk/internal/artifacts"
)

var checkFlags struct {
	model  string
	scaler string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configured artifacts and print what was loaded",
	RunE:  runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringVar(&checkFlags.model, "model", "", "Classifier artifact path (overrides config)")
	f.StringVar(&checkFlags.scaler, "scaler", "", "Scaler artifact path (overrides config)")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if checkFlags.model != "" {
		cfg.ModelPath = checkFlags.model
	}
	if checkFlags.scaler != "" {
		cfg.ScalerPath = checkFlags.scaler
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	set, err := artifacts.Load(cfg.ScalerPath, cfg.ModelPath)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(set.Info())
}
