// Package config provides the cspledger configuration and its validation. Values
// come from defaults, an optional env file, the environment and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/entry"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Config holds the complete application configuration.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Storage     StorageConfig
	Limits      LimitsConfig
	Display     DisplayConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
	File  string // "-" logs to stderr; empty means cspledger.log in the data directory
}

// StorageConfig says where the ledger lives
type StorageConfig struct {
	DataDir string
}

// LimitsConfig holds the per-transaction ceilings. Zero disables a ceiling.
type LimitsConfig struct {
	Withdrawal decimal.Decimal
	Transfer   decimal.Decimal
	Deposit    decimal.Decimal
}

// DisplayConfig controls how amounts are shown in the terminal UI
type DisplayConfig struct {
	Locale         language.Tag
	CurrencySymbol string
}

// EntryLimits converts the configured ceilings for entry validation.
func (c *Config) EntryLimits() entry.Limits {
	return entry.Limits{
		Withdrawal: c.Limits.Withdrawal,
		Transfer:   c.Limits.Transfer,
		Deposit:    c.Limits.Deposit,
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validate checks every value and reports all problems at once
func (c *Config) validate() error {
	var validationErrors []string

	if c.Application.Name == "" {
		validationErrors = append(validationErrors, "APP_NAME is required")
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		validationErrors = append(validationErrors, "LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.Storage.DataDir == "" {
		validationErrors = append(validationErrors, "DATA_DIR is required")
	}

	if c.Limits.Withdrawal.IsNegative() {
		validationErrors = append(validationErrors, "LIMIT_WITHDRAWAL must not be negative")
	}
	if c.Limits.Transfer.IsNegative() {
		validationErrors = append(validationErrors, "LIMIT_TRANSFER must not be negative")
	}
	if c.Limits.Deposit.IsNegative() {
		validationErrors = append(validationErrors, "LIMIT_DEPOSIT must not be negative")
	}

	if c.Display.Locale == language.Und {
		validationErrors = append(validationErrors, "DISPLAY_LOCALE must be a valid language tag")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}
	return nil
}
