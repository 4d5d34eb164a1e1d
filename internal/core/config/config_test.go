package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskpilot/internal/core/task"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Owner)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5000, cfg.Database.BusyTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Chat.Retention)
	assert.Equal(t, 20, cfg.Chat.HistoryLimit)
	assert.Equal(t, task.PriorityMedium, cfg.Tasks.DefaultPriority)
	assert.Equal(t, filepath.Join(dataDir, "taskpilot.db"), cfg.DatabaseFile())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Owner, cfg.Owner)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
owner: alice
database:
  max_open_conns: 2
chat:
  retention: 48h
  sweep_interval: 10m
  history_limit: 5
tasks:
  default_priority: high
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Owner)
	assert.Equal(t, 2, cfg.Database.MaxOpenConns)
	assert.Equal(t, 2, cfg.Database.MaxIdleConns, "idle conns default is capped by max open")
	assert.Equal(t, 48*time.Hour, cfg.Chat.Retention)
	assert.Equal(t, 10*time.Minute, cfg.Chat.SweepInterval)
	assert.Equal(t, 5, cfg.Chat.HistoryLimit)
	assert.Equal(t, task.PriorityHigh, cfg.Tasks.DefaultPriority)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "owner: [unclosed"), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})

	t.Run("invalid priority", func(t *testing.T) {
		_, err := Load(writeConfig(t, "tasks:\n  default_priority: urgent\n"), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tasks.default_priority")
	})

	t.Run("empty data dir", func(t *testing.T) {
		_, err := Load("", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data directory")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no owner", mutate: func(c *Config) { c.Owner = "" }, wantErr: "owner"},
		{name: "no conns", mutate: func(c *Config) { c.Database.MaxOpenConns = 0 }, wantErr: "max_open_conns"},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 20 }, wantErr: "max_idle_conns"},
		{name: "negative retention", mutate: func(c *Config) { c.Chat.Retention = -time.Hour }, wantErr: "chat.retention"},
		{name: "zero sweep", mutate: func(c *Config) { c.Chat.SweepInterval = 0 }, wantErr: "chat.sweep_interval"},
		{name: "zero history", mutate: func(c *Config) { c.Chat.HistoryLimit = 0 }, wantErr: "chat.history_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
