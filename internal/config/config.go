// Package config loads and validates the runtime configuration.
// Sources in precedence order: CLI flags, PILLARS_* environment
// variables, a .pillars.yaml file, then built-in defaults.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
)

// Config is the full runtime configuration.
type Config struct {
	Log     LogConfig        `mapstructure:"log" yaml:"log"`
	Server  ServerConfig     `mapstructure:"server" yaml:"server"`
	Backend BackendConfig    `mapstructure:"backend" yaml:"backend"`
	State   StateConfig      `mapstructure:"state" yaml:"state"`
	History HistoryConfig    `mapstructure:"history" yaml:"history"`
	Agents  []core.AgentSpec `mapstructure:"agents" yaml:"agents"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig configures the REST/SSE server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// BackendConfig configures the analysis service client.
type BackendConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StateConfig configures snapshot persistence.
type StateConfig struct {
	// Backend selects the store implementation: json, sqlite or memory.
	Backend string `mapstructure:"backend" yaml:"backend"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// HistoryConfig configures the analysis history log.
type HistoryConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// AgentsOrDefault returns the configured agent set, falling back to the
// built-in four-agent roster when none is configured.
func (c *Config) AgentsOrDefault() []core.AgentSpec {
	if len(c.Agents) == 0 {
		return core.DefaultAgents()
	}
	return c.Agents
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	host := c.Server.Host
	port := c.Server.Port
	if port == 0 {
		port = 8421
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
