package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/observer"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactive.json"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultMetricsNamespace prefixes every exported metric.
	DefaultMetricsNamespace = "reactive"

	// DefaultSnapshotDir is where the disk backend stores snapshots.
	DefaultSnapshotDir = ".snapshots"
)

// Snapshot backends.
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Config represents reactive.json plus its environment overrides.
type Config struct {
	// Production suppresses developer warnings.
	Production bool `json:"production,omitempty" env:"REACTIVE_PRODUCTION"`

	// ServerRendering disables observation of new values.
	ServerRendering bool `json:"serverRendering,omitempty" env:"REACTIVE_SERVER_RENDERING"`

	// SortedNotify notifies subscribers in creation order.
	SortedNotify bool `json:"sortedNotify,omitempty" env:"REACTIVE_SORTED_NOTIFY"`

	// Augment selects how arrays receive intercepted methods: "delegate"
	// or "copy".
	Augment string `json:"augment,omitempty" env:"REACTIVE_AUGMENT"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty" env:"REACTIVE_LOG_LEVEL"`

	// Devtools configures the inspector server.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Snapshot configures where state snapshots are stored.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevtoolsConfig contains devtools server settings.
type DevtoolsConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" env:"REACTIVE_DEVTOOLS_ADDR"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty" env:"REACTIVE_METRICS_NAMESPACE"`
}

// SnapshotConfig selects and configures the snapshot store.
type SnapshotConfig struct {
	// Backend is "disk" or "s3".
	Backend string `json:"backend,omitempty" env:"REACTIVE_SNAPSHOT_BACKEND"`

	// Dir is the disk backend's directory.
	Dir string `json:"dir,omitempty" env:"REACTIVE_SNAPSHOT_DIR"`

	S3 S3Config `json:"s3,omitempty"`
}

// S3Config contains S3 snapshot store settings.
type S3Config struct {
	Bucket       string `json:"bucket,omitempty" env:"REACTIVE_S3_BUCKET"`
	Prefix       string `json:"prefix,omitempty" env:"REACTIVE_S3_PREFIX"`
	Region       string `json:"region,omitempty" env:"REACTIVE_S3_REGION"`
	Endpoint     string `json:"endpoint,omitempty" env:"REACTIVE_S3_ENDPOINT"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" env:"REACTIVE_S3_USE_PATH_STYLE"`

	// Credentials never come from the file.
	AccessKeyID     string `json:"-" env:"REACTIVE_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"-" env:"REACTIVE_S3_SECRET_ACCESS_KEY"`
	SessionToken    string `json:"-" env:"REACTIVE_S3_SESSION_TOKEN"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Augment:  observer.AugmentDelegate.String(),
		LogLevel: "info",
		Devtools: DevtoolsConfig{
			Addr: DefaultDevtoolsAddr,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
		Snapshot: SnapshotConfig{
			Backend: BackendDisk,
			Dir:     DefaultSnapshotDir,
		},
	}
}

// Load reads reactive.json from dir if it exists, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(dir string) (*Config, error) {
	var cfg *Config
	if Exists(dir) {
		loaded, err := LoadFile(filepath.Join(dir, ConfigFileName))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = New()
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. It does not
// apply environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C201").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'reactivectl init' to write a default configuration")
		}
		return nil, errors.New("C201").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C201").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv overrides fields from REACTIVE_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return errors.New("C203").Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C201").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C201").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in values an empty file or variable left blank.
func (c *Config) applyDefaults() {
	defaults := New()
	if c.Augment == "" {
		c.Augment = defaults.Augment
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = defaults.Devtools.Addr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = defaults.Snapshot.Backend
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = defaults.Snapshot.Dir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := parseAugment(c.Augment); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Snapshot.Backend {
	case BackendDisk:
	case BackendS3:
		if c.Snapshot.S3.Bucket == "" {
			return errors.New("C202").
				WithDetail("snapshot.s3.bucket is required when snapshot.backend is \"s3\"").
				WithSuggestion("Set snapshot.s3.bucket or REACTIVE_S3_BUCKET")
		}
	default:
		return errors.New("C202").
			WithDetail("snapshot.backend must be \"disk\" or \"s3\", got \"" + c.Snapshot.Backend + "\"")
	}
	return nil
}

// RuntimeOptions maps the configuration onto observer runtime options.
// The logger is left to the caller; see Logger.
func (c *Config) RuntimeOptions() []observer.Option {
	mode, _ := parseAugment(c.Augment)
	return []observer.Option{
		observer.WithProduction(c.Production),
		observer.WithServerRendering(c.ServerRendering),
		observer.WithSortedNotify(c.SortedNotify),
		observer.WithAugment(mode),
	}
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

func parseAugment(s string) (observer.AugmentMode, error) {
	switch strings.ToLower(s) {
	case "", observer.AugmentDelegate.String():
		return observer.AugmentDelegate, nil
	case observer.AugmentCopy.String():
		return observer.AugmentCopy, nil
	}
	return observer.AugmentDelegate, errors.New("C202").
		WithDetail("augment must be \"delegate\" or \"copy\", got \"" + s + "\"")
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errors.New("C202").
			WithDetail("logLevel must be debug, info, warn or error, got \"" + s + "\"")
	}
	return level, nil
}
