package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the alarm-clock binaries.
type Config struct {
	// ServerAddress is the gRPC address of the alarm-clock daemon.
	ServerAddress string `yaml:"server_addr"`
	// Timeout is the duration for RPC calls made by the clients.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level written to the log (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// LogFormat selects the log encoder: console or json.
	LogFormat string `yaml:"log_format"`
	// Store configures where the alarm list is persisted.
	Store StoreConfig `yaml:"store"`
	// Calendar configures the public-holiday feed.
	Calendar CalendarConfig `yaml:"calendar"`
	// Notifications configures how triggered alarms are announced.
	Notifications NotificationsConfig `yaml:"notifications"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `yaml:"backend"`
	// Path is a directory for the file backend and a database file for sqlite.
	Path string `yaml:"path"`
	// Record is the name of the record holding the alarm list.
	Record string `yaml:"record"`
}

// CalendarConfig describes the holiday feed and its resync schedule.
type CalendarConfig struct {
	// URL is the JSON feed location.
	URL string `yaml:"url"`
	// Refresh is a cron expression or descriptor such as "@every 12h".
	Refresh string `yaml:"refresh"`
	// Timeout bounds one fetch.
	Timeout time.Duration `yaml:"timeout"`
}

// NotificationsConfig configures the notification sink.
type NotificationsConfig struct {
	// Enabled is the permission gate: when false triggers are computed but not delivered.
	Enabled *bool `yaml:"enabled"`
	// Sink is "log" or "command".
	Sink string `yaml:"sink"`
	// Command overrides the platform notifier for the command sink.
	// The placeholders {title} and {body} are substituted in every argument.
	Command []string `yaml:"command,omitempty"`
	// Timeout bounds one command delivery; the command is killed when it expires.
	Timeout time.Duration `yaml:"timeout"`
}

// NotificationsAllowed reports whether delivery is permitted; unset means yes.
func (n NotificationsConfig) NotificationsAllowed() bool {
	return n.Enabled == nil || *n.Enabled
}

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"
)

// Notification sinks.
const (
	SinkLog     = "log"
	SinkCommand = "command"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultServerAddress is used when the settings omit server_addr.
	DefaultServerAddress = "127.0.0.1:50061"

	// DefaultRecordName is the record holding the alarm list.
	DefaultRecordName = "alarm-clock:alarms"

	// DefaultSQLiteFilename is the database file used by the sqlite backend.
	DefaultSQLiteFilename = "alarm-clock.db"

	// DefaultCalendarURL is the community-maintained China holiday calendar.
	DefaultCalendarURL = "https://cdn.jsdelivr.net/gh/lanceliao/china-holiday-calender/holidayAPI.json"

	// DefaultCalendarRefresh re-fetches the holiday feed twice a day.
	DefaultCalendarRefresh = "@every 12h"

	// DefaultCalendarTimeout bounds a single feed download.
	DefaultCalendarTimeout = 15 * time.Second

	// DefaultNotificationTimeout bounds one notification command.
	DefaultNotificationTimeout = 10 * time.Second

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config and data files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned for unsupported store backends.
	errUnknownBackend = errors.New("unknown store backend")
	// errUnknownSink is returned for unsupported notification sinks.
	errUnknownSink = errors.New("unknown notification sink")
)

// Default returns settings with every field set to its default.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills defaults for omitted fields.
//
//nolint:cyclop // A flat list of default-fill checks reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		settings.ServerAddress = DefaultServerAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	// Set default timeout if not specified.
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if err := validateStore(&settings.Store); err != nil {
		return err
	}

	if err := validateCalendar(&settings.Calendar); err != nil {
		return err
	}

	return validateNotifications(&settings.Notifications)
}

func validateStore(store *StoreConfig) error {
	store.Backend = strings.ToLower(strings.TrimSpace(store.Backend))

	switch store.Backend {
	case "", StoreBackendFile:
		store.Backend = StoreBackendFile

		if store.Path == "" {
			store.Path = "."
		}
	case StoreBackendSQLite:
		if store.Path == "" {
			store.Path = DefaultSQLiteFilename
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, store.Backend)
	}

	if store.Record == "" {
		store.Record = DefaultRecordName
	}

	return nil
}

func validateCalendar(cal *CalendarConfig) error {
	if cal.URL == "" {
		cal.URL = DefaultCalendarURL
	}

	if _, err := url.ParseRequestURI(cal.URL); err != nil {
		return fmt.Errorf("invalid calendar URL: %w", err)
	}

	if cal.Refresh == "" {
		cal.Refresh = DefaultCalendarRefresh
	}

	if cal.Timeout <= 0 {
		cal.Timeout = DefaultCalendarTimeout
	}

	return nil
}

func validateNotifications(n *NotificationsConfig) error {
	n.Sink = strings.ToLower(strings.TrimSpace(n.Sink))

	switch n.Sink {
	case "":
		n.Sink = SinkLog
	case SinkLog, SinkCommand:
	default:
		return fmt.Errorf("%w: %q", errUnknownSink, n.Sink)
	}

	if n.Timeout <= 0 {
		n.Timeout = DefaultNotificationTimeout
	}

	return nil
}
