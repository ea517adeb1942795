// internal/config/validate.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[strings.ToLower(c.Server.LogLevel)] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	// Plugins validation
	seen := make(map[string]bool)
	for _, name := range c.Plugins.Builtins {
		if name == "" {
			errs = append(errs, "plugins.builtins: empty provider name")
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("plugins.builtins: %q listed twice", name))
		}
		seen[name] = true
	}
	if info, err := os.Stat(c.Plugins.Dir); err == nil && !info.IsDir() {
		errs = append(errs, fmt.Sprintf("plugins.dir: %q is not a directory", c.Plugins.Dir))
	}

	// Search validation
	if c.Search.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("search.concurrency: must not be negative, got %d", c.Search.Concurrency))
	}
	errs = positive(errs, "search.timeout", c.Search.Timeout)

	// Background job validation
	errs = positive(errs, "tasks.retention", c.Tasks.Retention)
	errs = positive(errs, "tasks.sweep_interval", c.Tasks.SweepInterval)
	if c.Tasks.SweepInterval > c.Tasks.Retention && c.Tasks.Retention > 0 {
		errs = append(errs, fmt.Sprintf("tasks.sweep_interval: %s exceeds retention %s", c.Tasks.SweepInterval, c.Tasks.Retention))
	}
	errs = positive(errs, "downloads.poll_interval", c.Downloads.PollInterval)
	if c.Events.Retention < 0 {
		errs = append(errs, fmt.Sprintf("events.retention: must not be negative, got %s", c.Events.Retention))
	}

	return errs
}

func positive(errs []string, key string, d time.Duration) []string {
	if d <= 0 {
		return append(errs, fmt.Sprintf("%s: must be positive, got %s", key, d))
	}
	return errs
}
