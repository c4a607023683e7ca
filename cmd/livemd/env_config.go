package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alnah/livemd/internal/config"
)

const envPrefix = "LIVEMD_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // LIVEMD_CONFIG: config file name or path
	Addr       string        // LIVEMD_ADDR: serve listen address
	Store      string        // LIVEMD_STORE: store DSN
	Engine     string        // LIVEMD_ENGINE: pattern, goldmark
	Highlight  string        // LIVEMD_HIGHLIGHT: chroma style name
	Timeout    time.Duration // LIVEMD_TIMEOUT: PDF export timeout
}

// knownEnvVars lists valid LIVEMD_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"LIVEMD_CONFIG":    true,
	"LIVEMD_ADDR":      true,
	"LIVEMD_STORE":     true,
	"LIVEMD_ENGINE":    true,
	"LIVEMD_HIGHLIGHT": true,
	"LIVEMD_TIMEOUT":   true,
	"LIVEMD_CONTAINER": true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// A malformed or non-positive LIVEMD_TIMEOUT is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("LIVEMD_CONFIG"),
		Addr:       os.Getenv("LIVEMD_ADDR"),
		Store:      os.Getenv("LIVEMD_STORE"),
		Engine:     os.Getenv("LIVEMD_ENGINE"),
		Highlight:  os.Getenv("LIVEMD_HIGHLIGHT"),
	}

	if timeout := os.Getenv("LIVEMD_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized LIVEMD_* variable,
// in name order.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overrides config values with the variables that are set.
// CLI flags are merged afterwards, giving: flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Store != "" {
		cfg.Store.DSN = env.Store
	}
	if env.Engine != "" {
		cfg.Render.Engine = env.Engine
	}
	if env.Highlight != "" {
		cfg.Render.Highlight = env.Highlight
	}
	if env.Timeout > 0 {
		cfg.Export.Timeout = env.Timeout.String()
	}
}
