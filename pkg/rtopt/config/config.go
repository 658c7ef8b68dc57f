package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Components   map[string]string `mapstructure:"components"`
}

// DeviceConfig selects the audio interface to optimize for.
type DeviceConfig struct {
	// CardIDs restricts ALSA matching to these card IDs. Empty matches
	// any USB audio card.
	CardIDs []string `mapstructure:"card_ids"`
}

// CoresConfig partitions the CPU cores.
type CoresConfig struct {
	Performance []int `mapstructure:"performance"`
	Efficiency  []int `mapstructure:"efficiency"`
}

// IntervalsConfig holds the scheduler periods, in seconds. Each
// concern runs on its own timer.
type IntervalsConfig struct {
	Presence    int `mapstructure:"presence"`
	Maintenance int `mapstructure:"maintenance"`
	XrunCheck   int `mapstructure:"xrun_check"`
	Live        int `mapstructure:"live"`
}

// HistoryConfig configures the xrun observation store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Device    DeviceConfig    `mapstructure:"device"`
	Cores     CoresConfig     `mapstructure:"cores"`
	Intervals IntervalsConfig `mapstructure:"intervals"`
	History   HistoryConfig   `mapstructure:"history"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	AudioProcesses []string `mapstructure:"audio_processes"`
	IRQPatterns    []string `mapstructure:"irq_patterns"`
	RTPriority     int      `mapstructure:"rt_priority"`

	WarnThreshold  uint `mapstructure:"warn_threshold"`
	NotifyCooldown int  `mapstructure:"notify_cooldown"`
	OnceDelay      int  `mapstructure:"once_delay"`

	StatePath   string   `mapstructure:"state_path"`
	TrayPath    string   `mapstructure:"tray_path"`
	SyslogPaths []string `mapstructure:"syslog_paths"`
	GUILogPath  string   `mapstructure:"gui_log_path"`
	EngineLog   string   `mapstructure:"engine_log"`
	PIDPath     string   `mapstructure:"pid_path"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/rtopt/config.yaml
//   - $HOME/.config/rtopt/config.yaml
//
// Environment variables are prefixed with RTOPT_ (e.g. RTOPT_RT_PRIORITY).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "rtopt"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "rtopt"))

	v.SetEnvPrefix("RTOPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, homeDir)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault("intervals.presence", DefaultPresenceInterval)
	v.SetDefault("intervals.maintenance", DefaultMaintenanceInterval)
	v.SetDefault("intervals.xrun_check", DefaultXrunInterval)
	v.SetDefault("intervals.live", DefaultLiveInterval)

	v.SetDefault("audio_processes", DefaultAudioProcesses)
	v.SetDefault("irq_patterns", DefaultIRQPatterns)
	v.SetDefault("rt_priority", DefaultRTPriority)

	v.SetDefault("warn_threshold", DefaultWarnThreshold)
	v.SetDefault("notify_cooldown", DefaultNotifyCooldownSeconds)
	v.SetDefault("once_delay", DefaultOnceDelaySeconds)

	v.SetDefault("state_path", filepath.Join(xdg.StateHome, "rtopt", "state"))
	v.SetDefault("pid_path", filepath.Join(xdg.StateHome, "rtopt", "rtopt.pid"))
	v.SetDefault("tray_path", DefaultTrayStatePath)
	v.SetDefault("syslog_paths", []string{"/var/log/syslog", "/var/log/messages"})
	v.SetDefault("gui_log_path", filepath.Join(homeDir, ".log", "qjackctl", "qjackctl.log"))
	v.SetDefault("engine_log", filepath.Join(homeDir, ".log", "jack", "jackd.log"))

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(xdg.DataHome, "rtopt", "history.db"))
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.components", map[string]string{
		"controller": "info",
		"monitor":    "info",
		"xrun":       "info",
		"sysfs":      "warn",
	})
}

// PresenceInterval returns the presence check period as a duration.
func (c *Config) PresenceInterval() time.Duration {
	return seconds(c.Intervals.Presence, DefaultPresenceInterval)
}

// MaintenanceInterval returns the maintenance pass period.
func (c *Config) MaintenanceInterval() time.Duration {
	return seconds(c.Intervals.Maintenance, DefaultMaintenanceInterval)
}

// XrunInterval returns the periodic xrun check period.
func (c *Config) XrunInterval() time.Duration {
	return seconds(c.Intervals.XrunCheck, DefaultXrunInterval)
}

// LiveInterval returns the live monitor tick period.
func (c *Config) LiveInterval() time.Duration {
	return seconds(c.Intervals.Live, DefaultLiveInterval)
}

// NotifyCooldownDuration returns the notification rate limit.
func (c *Config) NotifyCooldownDuration() time.Duration {
	return seconds(c.NotifyCooldown, DefaultNotifyCooldownSeconds)
}

// OnceDelayDuration returns the once-delayed startup delay.
func (c *Config) OnceDelayDuration() time.Duration {
	return seconds(c.OnceDelay, DefaultOnceDelaySeconds)
}

// Retention returns the history retention window.
func (c *Config) Retention() time.Duration {
	days := c.History.RetentionDays
	if days <= 0 {
		days = DefaultRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func seconds(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}
