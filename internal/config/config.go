package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"heartrisk/internal/logs"
)

var ErrConfigNotFound = errors.New("config file is not found")
var ErrInvalid = errors.New("configuration is invalid")

// EnvPrefix prefixes every environment override, e.g. HEARTRISK_PORT.
const EnvPrefix = "HEARTRISK_"

// Config is the process configuration.
type Config struct {
	// API metadata
	AppName     string `yaml:"app_name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`

	// network
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	APIPrefix   string   `yaml:"api_prefix"`
	CORSOrigins []string `yaml:"cors_origins"`

	// artifacts
	ModelPath            string `yaml:"model_path"`
	ScalerPath           string `yaml:"scaler_path"`
	ExitOnArtifactChange bool   `yaml:"exit_on_artifact_change"`

	// logging
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogBufferSize int    `yaml:"log_buffer_size"`

	ShutdownTimeout      time.Duration `yaml:"shutdown_timeout"`
	SlowRequestThreshold time.Duration `yaml:"slow_request_threshold"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AppName:              "Heart Disease Prediction API",
		Version:              "1.0.0",
		Description:          "Machine learning API for predicting heart disease",
		Host:                 "0.0.0.0",
		Port:                 8000,
		APIPrefix:            "/api",
		CORSOrigins:          []string{"*"},
		ModelPath:            "artifacts/heart-disease-knn-model.yaml",
		ScalerPath:           "artifacts/scaler.yaml",
		LogLevel:             "info",
		LogFormat:            "text",
		LogBufferSize:        1000,
		ShutdownTimeout:      10 * time.Second,
		SlowRequestThreshold: 500 * time.Millisecond,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and environment overrides, in that order, and validates it.
func Load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg, err := Read(path, lookupEnv)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply further
// overrides (such as command line flags) and validate afterwards.
func Read(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, fmt.Errorf("%w at %s", ErrConfigNotFound, path)
			}
			return Config{}, err
		}
		if err := cfg.unmarshal(buf); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
	}

	if lookupEnv != nil {
		if err := cfg.ApplyEnv(lookupEnv); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) unmarshal(buf []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from HEARTRISK_* variables.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("APP_NAME", &c.AppName)
	str("HOST", &c.Host)
	str("API_PREFIX", &c.APIPrefix)
	str("MODEL_PATH", &c.ModelPath)
	str("SCALER_PATH", &c.ScalerPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v, ok := lookupEnv(EnvPrefix + "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sPORT=%q is not a number", ErrInvalid, EnvPrefix, v)
		}
		c.Port = port
	}
	if v, ok := lookupEnv(EnvPrefix + "CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := lookupEnv(EnvPrefix + "EXIT_ON_ARTIFACT_CHANGE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sEXIT_ON_ARTIFACT_CHANGE=%q is not a boolean", ErrInvalid, EnvPrefix, v)
		}
		c.ExitOnArtifactChange = b
	}
	if v, ok := lookupEnv(EnvPrefix + "SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sSHUTDOWN_TIMEOUT=%q: %v", ErrInvalid, EnvPrefix, v, err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// Validate reports the first invalid setting, wrapped in ErrInvalid.
func (c Config) Validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	case c.ModelPath == "":
		return fmt.Errorf("%w: model_path is empty", ErrInvalid)
	case c.ScalerPath == "":
		return fmt.Errorf("%w: scaler_path is empty", ErrInvalid)
	case c.APIPrefix != "" && (!strings.HasPrefix(c.APIPrefix, "/") || strings.HasSuffix(c.APIPrefix, "/")):
		return fmt.Errorf("%w: api_prefix %q must start and not end with /", ErrInvalid, c.APIPrefix)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat)
	case c.LogBufferSize < 0:
		return fmt.Errorf("%w: log_buffer_size %d is negative", ErrInvalid, c.LogBufferSize)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalid)
	}
	if _, err := logs.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Level is the parsed log level. It assumes Validate passed.
func (c Config) Level() logs.Level {
	l, err := logs.ParseLevel(c.LogLevel)
	if err != nil {
		return logs.INFO
	}
	return l
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
