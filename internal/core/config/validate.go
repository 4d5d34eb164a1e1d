package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility. The configPath argument specifies the config file location
// to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateIdentity(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Chat.Retention == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Chat",
			Item:     "retention",
			Message:  "retention is 0, transcript messages are never pruned",
		})
	}

	if c.Chat.Retention > 0 && c.Chat.SweepInterval > c.Chat.Retention {
		warnings = append(warnings, ValidationWarning{
			Category: "Chat",
			Item:     "sweep_interval",
			Message:  fmt.Sprintf("sweep interval %s is longer than retention %s", c.Chat.SweepInterval, c.Chat.Retention),
		})
	}

	if c.Database.BusyTimeout < int(time.Second/time.Millisecond) {
		warnings = append(warnings, ValidationWarning{
			Category: "Database",
			Item:     "busy_timeout",
			Message:  "busy timeout under 1s may surface lock contention as store unavailable errors",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func (c *Config) validateIdentity() error {
	var errs criterio.FieldErrorsBuilder
	if strings.TrimSpace(c.Owner) != c.Owner {
		errs = errs.Append("owner", fmt.Errorf("must not have leading or trailing whitespace"))
	}
	if strings.ContainsAny(c.Owner, "\n\t") {
		errs = errs.Append("owner", fmt.Errorf("must be a single line"))
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
