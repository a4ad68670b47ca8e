// Package config loads and validates the host-facing configuration surface:
// default CaptureOptions plus the ambient logging and debug-preview-server
// settings, following the teacher's viper-backed Load/Save/Default shape.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Nu-Pan/aynime-capture/internal/capture"
	"github.com/Nu-Pan/aynime-capture/internal/logging"
	"github.com/spf13/viper"
)

// Config is the on-disk/environment configuration for the capture host
// (cmd/aynime-capture): CaptureOptions defaults plus ambient settings the
// library itself has no opinion on.
type Config struct {
	BufferSeconds           float64 `mapstructure:"buffer_seconds"`
	MemoryBudgetBytes       int64   `mapstructure:"memory_budget_bytes"`
	TargetFPS               float64 `mapstructure:"target_fps"`
	IncludeCursor           bool    `mapstructure:"include_cursor"`
	BorderRequired          bool    `mapstructure:"border_required"`
	IncludeSecondaryWindows bool    `mapstructure:"include_secondary_windows"`
	MaxWidth                int     `mapstructure:"max_width"`
	MaxHeight               int     `mapstructure:"max_height"`

	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	PreviewEnabled bool   `mapstructure:"preview_enabled"`
	PreviewAddr    string `mapstructure:"preview_addr"`

	LogShipURL      string `mapstructure:"log_ship_url"`
	LogShipDeviceID string `mapstructure:"log_ship_device_id"`
	LogShipToken    string `mapstructure:"log_ship_token"`
	LogShipMinLevel string `mapstructure:"log_ship_min_level"`
}

// Default mirrors the original implementation's capture defaults plus a
// conservative ambient stack: text logs to stdout, preview server off.
func Default() *Config {
	return &Config{
		BufferSeconds: 3.0,
		TargetFPS:     30.0,
		IncludeCursor: true,

		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,

		PreviewEnabled: false,
		PreviewAddr:    "127.0.0.1:9191",

		LogShipMinLevel: "warn",
	}
}

// Load reads cfgFile (or the platform default config path/name) via viper,
// falling back to Default() for anything unset, then runs tiered
// validation: fatal errors abort startup, warnings are logged and clamped.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("aynime-capture")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("AYNIME")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	result := cfg.ValidateTiered()
	for _, err := range result.Warnings {
		slog.Warn("config validation", "error", err)
	}
	if result.HasFatals() {
		for _, err := range result.Fatals {
			slog.Error("config validation fatal", "error", err)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, nil
}

// Save writes cfg to its platform-default path.
func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

// SaveTo writes cfg as YAML to cfgFile, or the platform default path if empty.
func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("buffer_seconds", cfg.BufferSeconds)
	viper.Set("memory_budget_bytes", cfg.MemoryBudgetBytes)
	viper.Set("target_fps", cfg.TargetFPS)
	viper.Set("include_cursor", cfg.IncludeCursor)
	viper.Set("border_required", cfg.BorderRequired)
	viper.Set("include_secondary_windows", cfg.IncludeSecondaryWindows)
	viper.Set("max_width", cfg.MaxWidth)
	viper.Set("max_height", cfg.MaxHeight)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)
	viper.Set("log_file", cfg.LogFile)
	viper.Set("log_max_size_mb", cfg.LogMaxSizeMB)
	viper.Set("log_max_backups", cfg.LogMaxBackups)
	viper.Set("preview_enabled", cfg.PreviewEnabled)
	viper.Set("preview_addr", cfg.PreviewAddr)
	viper.Set("log_ship_url", cfg.LogShipURL)
	viper.Set("log_ship_device_id", cfg.LogShipDeviceID)
	viper.Set("log_ship_token", cfg.LogShipToken)
	viper.Set("log_ship_min_level", cfg.LogShipMinLevel)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		if dir := filepath.Dir(cfgPath); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "aynime-capture.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	return viper.WriteConfigAs(cfgPath)
}

// ToCaptureOptions projects the config's CaptureOptions fields into an
// internal/capture.Options, the shape OpenWindow/OpenMonitor actually take.
func (c *Config) ToCaptureOptions() capture.Options {
	return capture.Options{
		BufferSeconds:           c.BufferSeconds,
		MemoryBudgetBytes:       c.MemoryBudgetBytes,
		TargetFPS:               c.TargetFPS,
		IncludeCursor:           c.IncludeCursor,
		BorderRequired:          c.BorderRequired,
		IncludeSecondaryWindows: c.IncludeSecondaryWindows,
		MaxWidth:                c.MaxWidth,
		MaxHeight:               c.MaxHeight,
	}
}

// LogShippingEnabled reports whether enough is configured to start the
// remote log shipper (internal/logging.InitShipper needs at least a
// destination URL).
func (c *Config) LogShippingEnabled() bool {
	return c.LogShipURL != ""
}

// ToShipperConfig projects the config's log-shipping fields into a
// logging.ShipperConfig, the shape InitShipper takes. Only meaningful when
// LogShippingEnabled reports true.
func (c *Config) ToShipperConfig() logging.ShipperConfig {
	return logging.ShipperConfig{
		ServerURL:      c.LogShipURL,
		DeviceID:       c.LogShipDeviceID,
		AuthToken:      c.LogShipToken,
		CaptureVersion: capture.Version,
		MinLevel:       c.LogShipMinLevel,
	}
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "aynime-capture")
	case "darwin":
		return "/Library/Application Support/aynime-capture"
	default:
		return "/etc/aynime-capture"
	}
}
