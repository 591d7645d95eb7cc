// Package config loads the canonhash configuration file.
//
// Configuration is loaded from a single YAML file named by the --config flag
// or the CANONHASH_CONFIG environment variable. There is no automatic
// discovery. Without either, the built-in defaults apply.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wiimdy/openfunderse/commit"
	"github.com/wiimdy/openfunderse/digest"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "CANONHASH_CONFIG"

// Config is the configuration shared by the CLI and the daemon.
type Config struct {
	// Algorithm is the default digest algorithm.
	// Default: keccak256
	Algorithm string `yaml:"algorithm"`

	// Kind is the default record kind.
	// Default: raw
	Kind string `yaml:"kind"`

	// StoreDir enables the canonical preimage store at this directory.
	StoreDir string `yaml:"store_dir"`

	// ReplicaDirs receive a copy of every preimage written to StoreDir.
	ReplicaDirs []string `yaml:"replica_dirs"`

	Log    LogConfig    `yaml:"log"`
	Daemon DaemonConfig `yaml:"daemon"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// DaemonConfig configures canonhashd.
type DaemonConfig struct {
	// Listen is the TCP address of the gRPC listener.
	// Default: 127.0.0.1:7788
	Listen string `yaml:"listen"`

	// MaxMsgBytes caps request and response sizes; 0 keeps the grpc default.
	MaxMsgBytes int `yaml:"max_msg_bytes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Algorithm: string(digest.Keccak256),
		Kind:      string(commit.Raw),
		Log:       LogConfig{Level: "info", Format: "text"},
		Daemon:    DaemonConfig{Listen: "127.0.0.1:7788"},
	}
}

// Load resolves the config file from path or, when path is empty, from
// CANONHASH_CONFIG. With neither set it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates a config file. Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := digest.ParseAlgorithm(c.Algorithm); err != nil {
		errs = append(errs, fmt.Errorf("algorithm: %w", err))
	}
	if _, err := commit.ParseKind(c.Kind); err != nil {
		errs = append(errs, fmt.Errorf("kind: %w", err))
	}
	if !contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}
	if len(c.ReplicaDirs) > 0 && c.StoreDir == "" {
		errs = append(errs, errors.New("replica_dirs requires store_dir"))
	}
	for i, d := range c.ReplicaDirs {
		if strings.TrimSpace(d) == "" {
			errs = append(errs, fmt.Errorf("replica_dirs[%d] is empty", i))
		}
	}
	if strings.TrimSpace(c.Daemon.Listen) == "" {
		errs = append(errs, errors.New("daemon.listen is required"))
	}
	if c.Daemon.MaxMsgBytes < 0 {
		errs = append(errs, errors.New("daemon.max_msg_bytes must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// CommitOptions returns commit.Options carrying the configured defaults.
// The config must have been validated.
func (c *Config) CommitOptions() commit.Options {
	return commit.Options{
		Algorithm: digest.Algorithm(c.Algorithm),
		Kind:      commit.Kind(c.Kind),
	}
}

// StoreDirs returns the preimage store directories, primary first, or nil
// when no store is configured.
func (c *Config) StoreDirs() []string {
	if c.StoreDir == "" {
		return nil
	}
	return append([]string{c.StoreDir}, c.ReplicaDirs...)
}

// NewLogger builds a slog.Logger writing to w as configured.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch l.Format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log.format must be one of: %v", logFormats)
	}
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
