package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"heartrisk/internal/artifacts"
	"heartrisk/internal/predict"
	"heartrisk/internal/schema"
)

var predictFlags struct {
	file   string
	model  string
	scaler string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one clinical record read from a JSON file or stdin",
	RunE:  runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVarP(&predictFlags.file, "file", "f", "-", "Clinical record JSON file, - for stdin")
	f.StringVar(&predictFlags.model, "model", "", "Classifier artifact path (overrides config)")
	f.StringVar(&predictFlags.scaler, "scaler", "", "Scaler artifact path (overrides config)")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if predictFlags.model != "" {
		cfg.ModelPath = predictFlags.model
	}
	if predictFlags.scaler != "" {
		cfg.ScalerPath = predictFlags.scaler
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if predictFlags.file != "-" {
		fp, err := os.Open(predictFlags.file)
		if err != nil {
			return fmt.Errorf("open record: %w", err)
		}
		defer fp.Close()
		in = fp
	}

	dec := json.NewDecoder(in)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("parse record: %w", err)
	}

	rec, err := schema.Parse(raw)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Reason)
			}
		}
		return err
	}

	set, err := artifacts.Load(cfg.ScalerPath, cfg.ModelPath)
	if err != nil {
		return err
	}

	result, err := predict.NewEngine(set).PredictRecord(rec)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
