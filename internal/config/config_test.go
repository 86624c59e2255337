package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, "mcp-invoice-contract", cfg.ServerName)
	assert.NotEmpty(t, cfg.InvoiceDirectory)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"server mode", func(c *Config) { c.Mode = ModeServer }, ""},
		{"stdio ignores port", func(c *Config) { c.Port = 0 }, ""},
		{"bad mode", func(c *Config) { c.Mode = "http" }, "mode must be"},
		{"bad port", func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, "port must be"},
		{"empty directory", func(c *Config) { c.InvoiceDirectory = "" }, "invoice directory cannot be empty"},
		{"file size", func(c *Config) { c.MaxFileSize = 0 }, "maximum file size must be positive"},
		{"workers", func(c *Config) { c.Workers = 0 }, "workers must be at least 1"},
		{"cache disabled", func(c *Config) { c.CacheSize = 0 }, ""},
		{"cache size", func(c *Config) { c.CacheSize = -1 }, "cache size cannot be negative"},
		{"word gap", func(c *Config) { c.WordGap = 0 }, "word gap must be positive"},
		{"contract date", func(c *Config) { c.ContractDate = "2024-13-01" }, "invalid contract date"},
		{"layout", func(c *Config) { c.Layout.RowTolerance = -1 }, "invalid layout heuristics"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.InvoiceDirectory = t.TempDir()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InvoiceDirectory = filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, cfg.Validate())
	assert.DirExists(t, cfg.InvoiceDirectory)
}

func TestConfigContractTime(t *testing.T) {
	cfg := DefaultConfig()
	got, err := cfg.ContractTime()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	cfg.ContractDate = "2024-03-05"
	got, err = cfg.ContractTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local), got)
}

func TestConfigLayoutConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.LayoutConfig().Debug)

	cfg.LogLevel = "debug"
	lc := cfg.LayoutConfig()
	assert.True(t, lc.Debug)
	assert.False(t, cfg.Layout.Debug, "LayoutConfig must not modify the config")
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host, cfg.Port = "localhost", 8081
	assert.Equal(t, "localhost:8081", cfg.Address())
	assert.True(t, cfg.IsStdioMode())
	assert.False(t, cfg.IsServerMode())
	assert.False(t, cfg.IsDebug())

	cfg.Mode = ModeServer
	assert.True(t, cfg.IsServerMode())
	assert.Contains(t, cfg.String(), "Mode: server")
	assert.Contains(t, cfg.String(), "Port: 8081")
}
