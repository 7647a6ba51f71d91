package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.LogLevel, qt.Equals, "info")
	c.Assert(cfg.ListenPort, qt.Equals, 9090)
	c.Assert(cfg.ProvingBackend, qt.Equals, BackendCircom)
	c.Assert(cfg.ProofTimeout, qt.Equals, 2*time.Minute)
	c.Assert(cfg.DataDir, qt.Not(qt.Equals), "")
}

func TestLoadEnvOverrides(t *testing.T) {
	c := qt.New(t)
	t.Setenv("ZKAFFINITY_LOG_LEVEL", "debug")
	t.Setenv("ZKAFFINITY_LISTEN_PORT", "7777")
	t.Setenv("ZKAFFINITY_PROVING_BACKEND", "gnark")
	t.Setenv("ZKAFFINITY_PROOF_TIMEOUT", "90s")

	cfg, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.LogLevel, qt.Equals, "debug")
	c.Assert(cfg.ListenPort, qt.Equals, 7777)
	c.Assert(cfg.ProvingBackend, qt.Equals, BackendGnark)
	c.Assert(cfg.ProofTimeout, qt.Equals, 90*time.Second)
}

func TestLoadFileAndPrecedence(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("log_level: warn\nlisten_port: 8081\n"), 0o600)
	c.Assert(err, qt.IsNil)
	t.Setenv("ZKAFFINITY_CONFIG", path)

	cfg, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.LogLevel, qt.Equals, "warn")
	c.Assert(cfg.ListenPort, qt.Equals, 8081)

	// env beats the file
	t.Setenv("ZKAFFINITY_LOG_LEVEL", "error")
	cfg, err = Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.LogLevel, qt.Equals, "error")
	c.Assert(cfg.ListenPort, qt.Equals, 8081)
}

func TestValidate(t *testing.T) {
	c := qt.New(t)

	cfg := New()
	c.Assert(cfg.Validate(), qt.IsNil)

	cfg = New()
	cfg.ListenPort = 0
	c.Assert(cfg.Validate(), qt.IsNotNil)

	cfg = New()
	cfg.ProvingBackend = "starks"
	c.Assert(cfg.Validate(), qt.IsNotNil)

	cfg = New()
	cfg.DataDir = ""
	c.Assert(cfg.Validate(), qt.IsNotNil)

	cfg = New()
	cfg.ProofTimeout = 0
	c.Assert(cfg.Validate(), qt.IsNotNil)
}
