package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartrisk/internal/logs"
)

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heartrisk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, logs.INFO, cfg.Level())
}

func TestLoad(t *testing.T) {
	t.Run("DefaultsOnly", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		if diff := cmp.Diff(Default(), cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("FileThenEnv", func(t *testing.T) {
		path := writeConfig(t, `
port: 9000
model_path: /models/knn.yaml
cors_origins: [https://app.example.com]
shutdown_timeout: 3s
log_format: json
`)
		cfg, err := Load(path, envOf(map[string]string{
			"HEARTRISK_PORT":        "9100",
			"HEARTRISK_SCALER_PATH": "/models/scaler.yaml",
			"HEARTRISK_LOG_LEVEL":   "debug",
		}))
		require.NoError(t, err)

		want := Default()
		want.Port = 9100
		want.ModelPath = "/models/knn.yaml"
		want.ScalerPath = "/models/scaler.yaml"
		want.CORSOrigins = []string{"https://app.example.com"}
		want.ShutdownTimeout = 3 * time.Second
		want.LogFormat = "json"
		want.LogLevel = "debug"
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, logs.DEBUG, cfg.Level())
	})

	t.Run("EmptyFileKeepsDefaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""), nil)
		require.NoError(t, err)
		assert.Equal(t, Default().Port, cfg.Port)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := Load(writeConfig(t, "prot: 80\n"), nil)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("BadEnv", func(t *testing.T) {
		_, err := Load("", envOf(map[string]string{"HEARTRISK_PORT": "eighty"}))
		assert.ErrorIs(t, err, ErrInvalid)

		_, err = Load("", envOf(map[string]string{"HEARTRISK_EXIT_ON_ARTIFACT_CHANGE": "maybe"}))
		assert.ErrorIs(t, err, ErrInvalid)

		_, err = Load("", envOf(map[string]string{"HEARTRISK_SHUTDOWN_TIMEOUT": "soon"}))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("ReadDefersValidation", func(t *testing.T) {
		path := writeConfig(t, "port: 0\n")

		cfg, err := Read(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Port)

		_, err = Load(path, nil)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("ShippedExample", func(t *testing.T) {
		cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"), nil)
		require.NoError(t, err)
		if diff := cmp.Diff(Default(), cfg); diff != "" {
			t.Errorf("example config differs from defaults (-want +got):\n%s", diff)
		}
	})

	t.Run("EnvLists", func(t *testing.T) {
		cfg, err := Load("", envOf(map[string]string{
			"HEARTRISK_CORS_ORIGINS":            " https://a.example , ,https://b.example",
			"HEARTRISK_EXIT_ON_ARTIFACT_CHANGE": "true",
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
		assert.True(t, cfg.ExitOnArtifactChange)
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"PortZero":       func(c *Config) { c.Port = 0 },
		"PortTooLarge":   func(c *Config) { c.Port = 70000 },
		"NoModel":        func(c *Config) { c.ModelPath = "" },
		"NoScaler":       func(c *Config) { c.ScalerPath = "" },
		"PrefixNoSlash":  func(c *Config) { c.APIPrefix = "api" },
		"PrefixTrailing": func(c *Config) { c.APIPrefix = "/api/" },
		"LogFormat":      func(c *Config) { c.LogFormat = "xml" },
		"LogLevel":       func(c *Config) { c.LogLevel = "loud" },
		"NegativeBuffer": func(c *Config) { c.LogBufferSize = -1 },
		"ZeroShutdown":   func(c *Config) { c.ShutdownTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	t.Run("EmptyPrefixAllowed", func(t *testing.T) {
		cfg := Default()
		cfg.APIPrefix = ""
		assert.NoError(t, cfg.Validate())
	})
}
