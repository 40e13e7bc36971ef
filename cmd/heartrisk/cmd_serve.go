package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"heartrisk/internal/config"
	"heartrisk/internal/logs"
)

var serveFlags struct {
	host                 string
	port                 int
	model                string
	scaler               string
	exitOnArtifactChange bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction HTTP API",
	Long: `Loads the scaler and classifier artifacts once and serves predictions
until SIGINT or SIGTERM. The process refuses to start when either artifact
is missing or malformed.

With --exit-on-artifact-change the server shuts down as soon as an artifact
file is modified, so a supervisor can restart it with the new files.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.host, "host", "", "Listen host (overrides config)")
	f.IntVar(&serveFlags.port, "port", 0, "Listen port (overrides config)")
	f.StringVar(&serveFlags.model, "model", "", "Classifier artifact path (overrides config)")
	f.StringVar(&serveFlags.scaler, "scaler", "", "Scaler artifact path (overrides config)")
	f.BoolVar(&serveFlags.exitOnArtifactChange, "exit-on-artifact-change", false, "Stop serving when an artifact file changes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}

	if err := logs.Init(cfg.Level(), cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}

	srv, err := newServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.run(ctx)
}

// serveConfig applies the serve flags over the loaded configuration and
// validates the result.
func serveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Host = serveFlags.host
	}
	if f.Changed("port") {
		cfg.Port = serveFlags.port
	}
	if f.Changed("model") {
		cfg.ModelPath = serveFlags.model
	}
	if f.Changed("scaler") {
		cfg.ScalerPath = serveFlags.scaler
	}
	if f.Changed("exit-on-artifact-change") {
		cfg.ExitOnArtifactChange = serveFlags.exitOnArtifactChange
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
