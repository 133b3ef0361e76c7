package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	// Explicit but missing file is an error.
	require.Error(t, err)

	t.Chdir(t.TempDir())
	cfg, err = LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultStatePath, cfg.StatePath)
	assert.Equal(t, DefaultMaxRows, cfg.MaxRows)
	assert.Equal(t, DefaultEmbeddingDim, cfg.EmbeddingDim)
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "querymind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\nmax_rows: 50\n"), 0o644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 50, cfg.MaxRows)
	assert.Equal(t, path, GetConfigFileUsed())
	// Untouched keys keep defaults.
	assert.Equal(t, DefaultStatePath, cfg.StatePath)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "querymind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0o644))
	t.Setenv("QUERYMIND_PORT", "7070")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("QUERYMIND_PORT", "7070")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", DefaultPort, "")
	flags.String("state-path", DefaultStatePath, "")
	require.NoError(t, flags.Parse([]string{"--port", "6060", "--state-path", "custom.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Port)
	assert.Equal(t, "custom.db", cfg.StatePath)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 1234, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	// Flag default differs from config default but was not set.
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = 0 }, "port"},
		{"missing state path", func(c *Config) { c.StatePath = "" }, "state_path"},
		{"bad timeout", func(c *Config) { c.QueryTimeoutSeconds = 0 }, "query_timeout_seconds"},
		{"bad max rows", func(c *Config) { c.MaxRows = -1 }, "max_rows"},
		{"bad embedding dim", func(c *Config) { c.EmbeddingDim = 0 }, "embedding_dim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Host:                DefaultHost,
				Port:                DefaultPort,
				StatePath:           DefaultStatePath,
				QueryTimeoutSeconds: DefaultQueryTimeoutSeconds,
				MaxRows:             DefaultMaxRows,
				MaxUploadMB:         DefaultMaxUploadMB,
				EmbeddingDim:        DefaultEmbeddingDim,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
