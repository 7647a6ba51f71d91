// Package config holds the service configuration and the published circuit
// artifact constants. Configuration is layered: compiled defaults, then an
// optional YAML file, then ZKAFFINITY_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Backend identifiers accepted by the proving_backend setting.
const (
	BackendCircom = "circom"
	BackendGnark  = "gnark"
)

// Config contains the process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogOutput selects the log destination: stdout, stderr or a file path.
	LogOutput string `koanf:"log_output"`
	// ListenHost is the HTTP API bind address.
	ListenHost string `koanf:"listen_host"`
	// ListenPort is the HTTP API port.
	ListenPort int `koanf:"listen_port"`
	// DataDir is the directory holding the database and downloaded
	// artifacts.
	DataDir string `koanf:"data_dir"`
	// DBType selects the key-value database backend.
	DBType string `koanf:"db_type"`
	// ProvingBackend selects the proving system: circom or gnark.
	ProvingBackend string `koanf:"proving_backend"`
	// ProofTimeout bounds a single proof generation.
	ProofTimeout time.Duration `koanf:"proof_timeout"`
	// ArtifactsDownloadTimeout bounds the initial artifact download.
	ArtifactsDownloadTimeout time.Duration `koanf:"artifacts_download_timeout"`
}

// New returns a Config with the compiled defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogOutput:                "stdout",
		ListenHost:               "0.0.0.0",
		ListenPort:               9090,
		DataDir:                  defaultDataDir(),
		DBType:                   "pebble",
		ProvingBackend:           BackendCircom,
		ProofTimeout:             2 * time.Minute,
		ArtifactsDownloadTimeout: 10 * time.Minute,
	}
}

// Load builds a Config by layering defaults, an optional file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ZKAFFINITY_CONFIG is set
//  3. env (prefix ZKAFFINITY_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ZKAFFINITY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Environment variables: ZKAFFINITY_LOG_LEVEL, ZKAFFINITY_LISTEN_PORT...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("ZKAFFINITY_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "zkaffinity_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("invalid listen port %d", c.ListenPort)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.ProvingBackend != BackendCircom && c.ProvingBackend != BackendGnark {
		return fmt.Errorf("unknown proving backend %q", c.ProvingBackend)
	}
	if c.ProofTimeout <= 0 {
		return fmt.Errorf("proof timeout must be positive")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "zkaffinity")
	}
	return filepath.Join(home, ".zkaffinity")
}
