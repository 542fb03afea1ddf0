// Package config loads application settings from the user config
// directory and OPENRTX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/OpenRTX/OpenRTX-Companion/internal/constants"
)

// Settings holds user-tunable application settings.
type Settings struct {
	// Port is the serial port preselected in the port selector.
	Port string `mapstructure:"port"`

	// BackupDir is the default destination directory for backups.
	BackupDir string `mapstructure:"backup_dir"`

	// Simulate replaces the radio with a file-backed simulator. Useful
	// for development without hardware.
	Simulate bool `mapstructure:"simulate"`

	// TickInterval overrides the status refresh cadence.
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`
}

// Dir returns the per-user configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "openrtx-companion")
}

// DefaultBackupDir returns the fallback backup destination.
func DefaultBackupDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "OpenRTX-Backups")
}

// Load reads settings from the given config file, or from the default
// location when path is empty. A missing file is not an error; defaults
// and environment variables still apply.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else if dir := Dir(); dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("OPENRTX")
	v.AutomaticEnv()

	v.SetDefault("port", "")
	v.SetDefault("backup_dir", DefaultBackupDir())
	v.SetDefault("simulate", false)
	v.SetDefault("tick_interval", constants.TickInterval)
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		// An explicit file must exist; the default location may not.
		if path != "" {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if s.TickInterval <= 0 {
		s.TickInterval = constants.TickInterval
	}
	if s.BackupDir == "" {
		s.BackupDir = DefaultBackupDir()
	}
	return &s, nil
}
