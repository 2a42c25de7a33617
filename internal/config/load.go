package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const envPrefix = "CSPLEDGER"

// flagKeys maps command-line flags onto configuration keys
var flagKeys = map[string]string{
	"data-dir":  "DATA_DIR",
	"log-level": "LOG_LEVEL",
	"log-file":  "LOG_FILE",
	"env":       "APP_ENV",
}

// LoadConfig loads configuration from "<configName>.env" in ./configs or the
// working directory, then the environment, then any flags set in flags. flags may
// be nil.
func LoadConfig(configName string, flags *pflag.FlagSet) (*Config, error) {
	return loadConfig(fmt.Sprintf("%s.env", configName), "env", flags)
}

// loadConfig layers the configuration:
// 1. Load defaults
// 2. Load a .env file into the process environment, if present
// 3. Override with config file values (if found)
// 4. Override with environment variables
// 5. Override with flags that were set
// 6. Validate the final configuration
func loadConfig(configName, configType string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	if configType != "" {
		v.SetConfigType(configType)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file (%s): %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var problems []string
	config := &Config{
		Application: ApplicationConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Storage: StorageConfig{
			DataDir: v.GetString("DATA_DIR"),
		},
		Limits: LimitsConfig{
			Withdrawal: parseLimit(v, "LIMIT_WITHDRAWAL", &problems),
			Transfer:   parseLimit(v, "LIMIT_TRANSFER", &problems),
			Deposit:    parseLimit(v, "LIMIT_DEPOSIT", &problems),
		},
		Display: DisplayConfig{
			Locale:         parseLocale(v.GetString("DISPLAY_LOCALE")),
			CurrencySymbol: v.GetString("CURRENCY_SYMBOL"),
		},
	}

	if err := config.validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
	}

	return config, nil
}

// loadDotEnv reads KEY=value pairs into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func parseLimit(v *viper.Viper, key string, problems *[]string) decimal.Decimal {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s must be a number", key))
		return decimal.Zero
	}
	return d
}

// parseLocale returns language.Und for anything unparseable; validate reports it.
func parseLocale(raw string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return language.Und
	}
	return tag
}

// setDefaults initializes configuration with the values a single counter uses out
// of the box.
func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_NAME", "cspledger")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("DATA_DIR", defaultDataDir())

	// Ceilings for customer-facing transactions, in rupees
	v.SetDefault("LIMIT_WITHDRAWAL", "10000")
	v.SetDefault("LIMIT_TRANSFER", "10000")
	v.SetDefault("LIMIT_DEPOSIT", "20000")

	v.SetDefault("DISPLAY_LOCALE", "en-IN")
	v.SetDefault("CURRENCY_SYMBOL", "₹")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cspledger")
	}
	return ".cspledger"
}
