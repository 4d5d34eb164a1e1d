// Package config handles configuration loading and validation for taskpilot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskpilot/internal/core/task"
)

// Config holds the application configuration.
type Config struct {
	Owner    string         `yaml:"owner"`
	Database DatabaseConfig `yaml:"database"`
	Chat     ChatConfig     `yaml:"chat"`
	Tasks    TasksConfig    `yaml:"tasks"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// ChatConfig controls the conversation transcript.
type ChatConfig struct {
	// Retention is how long transcript messages are kept. Zero keeps them forever.
	Retention time.Duration `yaml:"retention"`
	// SweepInterval is how often expired messages are pruned.
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// HistoryLimit is the default number of messages shown by `taskpilot history`.
	HistoryLimit int `yaml:"history_limit"`
}

// TasksConfig holds defaults for directly created tasks.
type TasksConfig struct {
	DefaultPriority task.Priority `yaml:"default_priority"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Owner: "local",
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Chat: ChatConfig{
			Retention:     30 * 24 * time.Hour,
			SweepInterval: time.Hour,
			HistoryLimit:  20,
		},
		Tasks: TasksConfig{
			DefaultPriority: task.PriorityMedium,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Owner == "" {
		c.Owner = defaults.Owner
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = min(defaults.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Chat.SweepInterval == 0 {
		c.Chat.SweepInterval = defaults.Chat.SweepInterval
	}
	if c.Chat.HistoryLimit == 0 {
		c.Chat.HistoryLimit = defaults.Chat.HistoryLimit
	}
	if c.Tasks.DefaultPriority == "" {
		c.Tasks.DefaultPriority = defaults.Tasks.DefaultPriority
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if c.Chat.Retention < 0 {
		return fmt.Errorf("chat.retention cannot be negative")
	}

	if c.Chat.SweepInterval <= 0 {
		return fmt.Errorf("chat.sweep_interval must be positive")
	}

	if c.Chat.HistoryLimit < 1 {
		return fmt.Errorf("chat.history_limit must be at least 1")
	}

	if !c.Tasks.DefaultPriority.IsValid() {
		return fmt.Errorf("tasks.default_priority %q is not one of low, medium, high", c.Tasks.DefaultPriority)
	}

	return nil
}

// DatabaseFile returns the path to the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "taskpilot.db")
}
