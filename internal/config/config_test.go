package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	testChdir(t, t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.TelnetPort != 2323 || cfg.Server.HTTPPort != 8080 {
		t.Fatalf("unexpected defaults: %+v", cfg.Server)
	}
	if cfg.Games.NumberGuessAttempts != 7 {
		t.Fatalf("expected 7 attempts, got %d", cfg.Games.NumberGuessAttempts)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	testChdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  telnet_port: 4000\n  http_port: 9000\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.TelnetPort != 4000 {
		t.Fatalf("expected telnet port 4000, got %d", cfg.Server.TelnetPort)
	}
	if cfg.Server.HTTPPort != 9100 {
		t.Fatalf("expected env to override http port, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.SSHPort != 2222 {
		t.Fatalf("expected default ssh port, got %d", cfg.Server.SSHPort)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.Log.Level)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	testChdir(t, t.TempDir())
	t.Setenv("TELNET_PORT", "70000")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected out-of-range port to fail")
	}

	t.Setenv("TELNET_PORT", "abc")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected non-numeric port to fail")
	}
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
