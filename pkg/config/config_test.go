package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
ble:
  scanTimeout: 20s
  namePrefix: "BS"
  address: "AA:BB:CC:DD:EE:FF"
  pollInterval: 5s
led:
  brightness: 50
logging:
  logFormat: JSON
  logLevel: Debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.BLE.ScanTimeout)
	assert.Equal(t, "BS", cfg.BLE.NamePrefix)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.BLE.Address)
	assert.Equal(t, 5*time.Second, cfg.BLE.PollInterval)
	assert.Equal(t, LEDConfig{Brightness: 50}, cfg.LED)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.BLE.ScanTimeout)
	assert.Equal(t, 2*time.Second, cfg.BLE.PollInterval)
	assert.Equal(t, 60, cfg.LED.Brightness)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_ExplicitZeros(t *testing.T) {
	path := writeConfig(t, `
ble:
  pollInterval: 0s
led:
  brightness: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.BLE.PollInterval, "zero disables polling")
	assert.Equal(t, 0, cfg.LED.Brightness)
}

func TestLoad_FileKeepsUnsetDefaults(t *testing.T) {
	path := writeConfig(t, `
ble:
  namePrefix: "BS"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPollInterval, cfg.BLE.PollInterval)
	assert.Equal(t, DefaultLEDBrightness, cfg.LED.Brightness)
}

func TestLoad_EnvZeroOverridesDefault(t *testing.T) {
	t.Setenv("GOSHARK_POLL_INTERVAL", "0s")
	t.Setenv("GOSHARK_LED_BRIGHTNESS", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.BLE.PollInterval)
	assert.Equal(t, 0, cfg.LED.Brightness)
}

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("GOSHARK_NAME_PREFIX", "Shark")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Shark", cfg.BLE.NamePrefix)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
led:
  brightness: 10
`)
	t.Setenv("GOSHARK_LED_BRIGHTNESS", "90")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.LED.Brightness)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			BLE:     BLEConfig{ScanTimeout: 10 * time.Second, PollInterval: time.Second},
			LED:     LEDConfig{Brightness: 4},
			Logging: LoggingConfig{Format: "console", Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"short scan", func(c *Config) { c.BLE.ScanTimeout = time.Millisecond }, "scan timeout"},
		{"negative poll", func(c *Config) { c.BLE.PollInterval = -time.Second }, "poll interval"},
		{"bad address", func(c *Config) { c.BLE.Address = "nope" }, "invalid device address"},
		{"brightness out of range", func(c *Config) { c.LED.Brightness = 101 }, "led brightness"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
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
