// Package config loads settings for the goshark command line tools from a YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mlsorensen/goshark/pkg/logging"
	"go.uber.org/zap"
)

// Config represents the application configuration
type Config struct {
	BLE     BLEConfig     `yaml:"ble"`
	LED     LEDConfig     `yaml:"led"`
	Logging LoggingConfig `yaml:"logging"`
}

// BLEConfig controls discovery and the connection.
type BLEConfig struct {
	ScanTimeout  time.Duration `yaml:"scanTimeout" env:"GOSHARK_SCAN_TIMEOUT" env-default:"15s"`
	NamePrefix   string        `yaml:"namePrefix" env:"GOSHARK_NAME_PREFIX"`
	Address      string        `yaml:"address" env:"GOSHARK_ADDRESS"`
	PollInterval time.Duration `yaml:"pollInterval" env:"GOSHARK_POLL_INTERVAL"`
}

// LEDConfig holds the brightness used when a colour is set without one.
type LEDConfig struct {
	Brightness int `yaml:"brightness" env:"GOSHARK_LED_BRIGHTNESS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `yaml:"logFormat" env:"GOSHARK_LOG_FORMAT" env-default:"console"`
	Level  string `yaml:"logLevel" env:"GOSHARK_LOG_LEVEL" env-default:"warn"`
}

// Defaults for settings where zero is valid. They are seeded into the struct
// before reading, not declared as env-default tags.
const (
	DefaultPollInterval  = 2 * time.Second
	DefaultLEDBrightness = 60
)

var macAddressRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// Load reads configuration from a YAML file with environment overrides. An
// empty path, or a path that does not exist, reads the environment only.
func Load(configPath string) (*Config, error) {
	cfg := Config{
		BLE: BLEConfig{PollInterval: DefaultPollInterval},
		LED: LEDConfig{Brightness: DefaultLEDBrightness},
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			return validated(&cfg)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return validated(&cfg)
}

func validated(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BLE.ScanTimeout < time.Second {
		return fmt.Errorf("scan timeout must be at least 1s, got %s", c.BLE.ScanTimeout)
	}
	if c.BLE.PollInterval < 0 {
		return fmt.Errorf("poll interval must not be negative, got %s", c.BLE.PollInterval)
	}
	if c.BLE.Address != "" && !macAddressRegex.MatchString(c.BLE.Address) {
		return fmt.Errorf("invalid device address format: %s (expected format: XX:XX:XX:XX:XX:XX)", c.BLE.Address)
	}

	if c.LED.Brightness < 0 || c.LED.Brightness > 100 {
		return fmt.Errorf("led brightness must be between 0 and 100, got %d", c.LED.Brightness)
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", c.Logging.Format)
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}

// InitLogger initializes the shared logger from the logging section.
func (c *Config) InitLogger() error {
	return logging.Initialize(c.Logging.Level, c.Logging.Format)
}

// PrintConfig logs the effective configuration.
func (c *Config) PrintConfig(logger *zap.Logger) {
	logger.Info("configuration loaded",
		zap.Duration("scan_timeout", c.BLE.ScanTimeout),
		zap.String("name_prefix", c.BLE.NamePrefix),
		zap.String("address", c.BLE.Address),
		zap.Duration("poll_interval", c.BLE.PollInterval),
		zap.Int("led_brightness", c.LED.Brightness),
		zap.String("log_format", c.Logging.Format),
		zap.String("log_level", c.Logging.Level),
	)
}
