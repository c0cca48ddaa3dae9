package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fourpillars-ai/pillars/internal/core"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "auto" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
	if cfg.State.Backend != "json" {
		t.Errorf("state backend = %q, want json", cfg.State.Backend)
	}
	if cfg.History.Capacity != core.DefaultHistoryCapacity {
		t.Errorf("history capacity = %d", cfg.History.Capacity)
	}
	if len(cfg.Agents) != 4 {
		t.Errorf("agents = %d, want default roster of 4", len(cfg.Agents))
	}
	if cfg.Addr() != "127.0.0.1:8421" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pillars.yaml")
	content := `
log:
  level: debug
server:
  port: 9000
state:
  backend: sqlite
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().WithConfigFile(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.State.Backend != "sqlite" {
		t.Errorf("state backend = %q, want sqlite", cfg.State.Backend)
	}
	// Untouched keys keep their defaults.
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PILLARS_LOG_LEVEL", "error")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q, want error from env", cfg.Log.Level)
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pillars.yaml")
	if err := os.WriteFile(path, []byte("state:\n  backend: cassandra\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader().WithConfigFile(path).Load(); err == nil {
		t.Error("Load() accepted an unknown state backend")
	}
}

func validConfig() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "auto"},
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8421},
		Backend: BackendConfig{URL: "http://localhost:8000"},
		State:   StateConfig{Backend: "json", Dir: ".pillars/state"},
		History: HistoryConfig{Capacity: 100},
		Agents:  core.DefaultAgents(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown state backend", func(c *Config) { c.State.Backend = "etcd" }, true},
		{"zero capacity", func(c *Config) { c.History.Capacity = 0 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing backend url", func(c *Config) { c.Backend.URL = "" }, true},
		{"no agents", func(c *Config) { c.Agents = nil }, true},
		{"duplicate agent id", func(c *Config) {
			c.Agents = append(c.Agents, c.Agents[0])
		}, true},
		{"weights off by too much", func(c *Config) {
			c.Agents[0].Weight += 0.2
		}, true},
		{"weights within tolerance", func(c *Config) {
			c.Agents[0].Weight += 0.005
		}, false},
		{"negative weight", func(c *Config) {
			c.Agents[0].Weight = -0.1
			c.Agents[1].Weight += 0.4 + c.Agents[0].Weight
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && core.CategoryOf(err) != core.ErrCatValidation {
				t.Errorf("error category = %v, want validation", core.CategoryOf(err))
			}
		})
	}
}

func TestWrite_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pillars.yaml")
	cfg := validConfig()
	cfg.Log.Level = "debug"

	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	loaded, err := NewLoader().WithConfigFile(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("round-trip log level = %q", loaded.Log.Level)
	}
	if len(loaded.Agents) != 4 {
		t.Errorf("round-trip agents = %d", len(loaded.Agents))
	}
}

func TestWrite_RejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.History.Capacity = -1
	if err := Write(filepath.Join(t.TempDir(), "pillars.yaml"), cfg); err == nil {
		t.Error("Write() accepted an invalid config")
	}
}
