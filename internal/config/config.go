// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied by Load for settings the file leaves out.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8484
	DefaultLogLevel       = "info"
	DefaultDatabasePath   = "./data/mediahub.db"
	DefaultPluginDir      = "./plugins"
	DefaultTaskRetention  = 24 * time.Hour
	DefaultSweepInterval  = time.Hour
	DefaultPollInterval   = 30 * time.Second
	DefaultEventRetention = 7 * 24 * time.Hour
	DefaultSearchTimeout  = 60 * time.Second
	DefaultSearchFanout   = 8
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Plugins   PluginsConfig   `toml:"plugins"`
	Search    SearchConfig    `toml:"search"`
	Tasks     TasksConfig     `toml:"tasks"`
	Downloads DownloadsConfig `toml:"downloads"`
	Events    EventsConfig    `toml:"events"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// PluginsConfig controls where scripted providers live and which built-in
// providers are registered. An empty Builtins list enables all of them.
type PluginsConfig struct {
	Dir             string   `toml:"dir"`
	DiscoverOnStart bool     `toml:"discover_on_start"`
	Builtins        []string `toml:"builtins"`
}

type SearchConfig struct {
	Concurrency int           `toml:"concurrency"`
	Timeout     time.Duration `toml:"timeout"`
	Rank        bool          `toml:"rank"`
}

type TasksConfig struct {
	Retention     time.Duration `toml:"retention"`
	SweepInterval time.Duration `toml:"sweep_interval"`
}

type DownloadsConfig struct {
	PollInterval time.Duration `toml:"poll_interval"`
}

// EventsConfig sets how long the event log keeps entries. Zero disables pruning.
type EventsConfig struct {
	Retention time.Duration `toml:"retention"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(toml.MetaData{})
	return cfg
}

// Load reads, parses and validates the configuration file.
// Missing environment variables and validation problems are reported
// together as a *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation and unresolved variable checks.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults(md)

	return &cfg, missing, nil
}

func (c *Config) applyDefaults(md toml.MetaData) {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Plugins.Dir == "" {
		c.Plugins.Dir = DefaultPluginDir
	}
	if !md.IsDefined("plugins", "discover_on_start") {
		c.Plugins.DiscoverOnStart = true
	}
	if c.Search.Concurrency == 0 {
		c.Search.Concurrency = DefaultSearchFanout
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = DefaultSearchTimeout
	}
	if !md.IsDefined("search", "rank") {
		c.Search.Rank = true
	}
	if c.Tasks.Retention == 0 {
		c.Tasks.Retention = DefaultTaskRetention
	}
	if c.Tasks.SweepInterval == 0 {
		c.Tasks.SweepInterval = DefaultSweepInterval
	}
	if c.Downloads.PollInterval == 0 {
		c.Downloads.PollInterval = DefaultPollInterval
	}
	if !md.IsDefined("events", "retention") {
		c.Events.Retention = DefaultEventRetention
	}
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} with the variable's value. ${VAR:-default}
// falls back to default when VAR is unset or empty. Unresolved references are
// left in place and their names returned.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := groups[1], groups[2] != "", groups[3]

		value, ok := os.LookupEnv(name)
		if ok && (value != "" || !hasDefault) {
			return value
		}
		if hasDefault {
			return def
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match
	})
	return out, missing
}
