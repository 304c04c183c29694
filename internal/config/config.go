// Package config loads the configuration of the vizsync command.
//
// Config file locations (priority order):
//  1. the -config flag
//  2. $VIZSYNC_CONFIG
//  3. ./vizsync.yaml
//  4. $XDG_CONFIG_HOME/vizsync/config.yaml or ~/.config/vizsync/config.yaml
//
// Missing values take the defaults of DefaultConfig.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/vizsync/codec"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "VIZSYNC_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "vizsync.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "vizsync"
)

// Upload backends.
const (
	UploadNone  = ""
	UploadLocal = "local"
	UploadS3    = "s3"
	UploadMinio = "minio"
)

// ErrInvalid is matched by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Log       LogConfig       `yaml:"log"`
	Recording RecordingConfig `yaml:"recording"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Upload    UploadConfig    `yaml:"upload"`
	Demo      DemoConfig      `yaml:"demo"`
}

// LogConfig selects the log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// RecordingConfig holds store settings
type RecordingConfig struct {
	Path        string `yaml:"path"`
	Compression string `yaml:"compression"` // none, lz4, zstd
	Codec       string `yaml:"codec"`       // json, go-json
}

// PlaybackConfig holds replay settings
type PlaybackConfig struct {
	FPS         float64  `yaml:"fps"`
	Follow      bool     `yaml:"follow"`
	IdleTimeout Duration `yaml:"idle_timeout,omitempty"`
	MaxFrames   int      `yaml:"max_frames,omitempty"`
}

// UploadConfig selects where recordings are published.
type UploadConfig struct {
	Backend  string `yaml:"backend,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Dir      string `yaml:"dir,omitempty"`      // local
	Bucket   string `yaml:"bucket,omitempty"`   // s3, minio
	Prefix   string `yaml:"prefix,omitempty"`   // s3, minio
	Region   string `yaml:"region,omitempty"`   // s3
	Endpoint string `yaml:"endpoint,omitempty"` // minio, optional for s3
	Secure   bool   `yaml:"secure,omitempty"`   // minio
	// Credentials are read from these environment variables, never from
	// the file itself.
	AccessKeyEnv string `yaml:"access_key_env,omitempty"`
	SecretKeyEnv string `yaml:"secret_key_env,omitempty"`
}

// DemoConfig sizes the demo scene
type DemoConfig struct {
	Steps    int   `yaml:"steps"`
	Rings    int   `yaml:"rings"`
	Segments int   `yaml:"segments"`
	Seed     int64 `yaml:"seed"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load finds and loads the config file, or returns defaults if none found.
// An explicit path must exist.
func Load(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = FindConfigPath()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// DefaultConfig returns the defaults
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Recording.Path == "" {
		c.Recording.Path = "./vizsync.db"
	}
	if c.Recording.Compression == "" {
		c.Recording.Compression = "lz4"
	}
	if c.Recording.Codec == "" {
		c.Recording.Codec = "go-json"
	}
	if c.Playback.FPS == 0 {
		c.Playback.FPS = 20
	}
	if c.Upload.Backend != UploadNone && c.Upload.Name == "" {
		c.Upload.Name = filepath.Base(c.Recording.Path)
	}
	if c.Demo.Steps == 0 {
		c.Demo.Steps = 200
	}
	if c.Demo.Rings == 0 {
		c.Demo.Rings = 12
	}
	if c.Demo.Segments == 0 {
		c.Demo.Segments = 24
	}
	if c.Demo.Seed == 0 {
		c.Demo.Seed = 1
	}
}

// Validate reports values that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format))
	}
	if _, err := codec.ParseCompression(c.Recording.Compression); err != nil {
		errs = append(errs, fmt.Errorf("%w: recording.compression: %w", ErrInvalid, err))
	}
	if _, ok := codec.ByName(c.Recording.Codec); !ok {
		errs = append(errs, fmt.Errorf("%w: recording.codec %q", ErrInvalid, c.Recording.Codec))
	}
	switch c.Upload.Backend {
	case UploadNone:
	case UploadLocal:
		if c.Upload.Dir == "" {
			errs = append(errs, fmt.Errorf("%w: upload.dir is required for local uploads", ErrInvalid))
		}
	case UploadS3, UploadMinio:
		if c.Upload.Bucket == "" {
			errs = append(errs, fmt.Errorf("%w: upload.bucket is required for %s uploads", ErrInvalid, c.Upload.Backend))
		}
		if c.Upload.Backend == UploadMinio && c.Upload.Endpoint == "" {
			errs = append(errs, fmt.Errorf("%w: upload.endpoint is required for minio uploads", ErrInvalid))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: upload.backend %q", ErrInvalid, c.Upload.Backend))
	}
	if c.Demo.Steps < 0 || c.Demo.Rings < 2 || c.Demo.Segments < 3 {
		errs = append(errs, fmt.Errorf("%w: demo needs steps >= 0, rings >= 2, segments >= 3", ErrInvalid))
	}
	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}

// FindConfigPath searches for the config file in priority order. Returns
// empty string if no config file found.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}
	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		if path := filepath.Join(xdgHome, ConfigDirName, "config.yaml"); fileExists(path) {
			return path
		}
	}
	if home := os.Getenv("HOME"); home != "" {
		if path := filepath.Join(home, ".config", ConfigDirName, "config.yaml"); fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
