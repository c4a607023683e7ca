package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/livemd/internal/fileutil"
	"github.com/alnah/livemd/internal/pipeline"
	"github.com/alnah/livemd/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength        = 255  // host:port
	MaxDSNLength         = 4096 // PATH_MAX
	MaxPathLength        = 4096
	MaxEngineLength      = 20 // "pattern", "goldmark"
	MaxStyleLength       = 50 // chroma style name
	MaxPageSizeLength    = 10 // "letter", "a4", "legal"
	MaxOrientationLength = 10 // "portrait", "landscape"
	MaxDurationLength    = 20 // "30s", "1m30s"
)

// Defaults applied by DefaultConfig.
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = "5s"
	DefaultExportTimeout   = "30s"
	DefaultPageSize        = "letter"
	DefaultOrientation     = "portrait"
	DefaultMargin          = 0.5
)

// Margin bounds in inches, mirrored from the export page settings.
const (
	minMargin = 0.25
	maxMargin = 3.0
)

// configDirName is the directory under os.UserConfigDir searched by name.
const configDirName = "livemd"

// Config holds the settings shared by the render, serve and export commands.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Render RenderConfig `yaml:"render"`
	Export ExportConfig `yaml:"export"`
}

// ServerConfig defines preview server options.
type ServerConfig struct {
	Addr            string `yaml:"addr"`            // Listen address (default ":8080")
	MaxBodyBytes    int64  `yaml:"maxBodyBytes"`    // Request body limit (default 1 MiB)
	ShutdownTimeout string `yaml:"shutdownTimeout"` // Go duration (default "5s")
	AssetsDir       string `yaml:"assetsDir"`       // Overrides embedded assets by name (empty = embedded only)
}

// StoreConfig defines where editor state is persisted.
type StoreConfig struct {
	DSN string `yaml:"dsn"` // memory://, file://path.yaml, sqlite://path.db (empty = memory)
}

// RenderConfig defines markdown engine options.
type RenderConfig struct {
	Engine     string `yaml:"engine"`     // "pattern" (default) or "goldmark"
	ShieldCode bool   `yaml:"shieldCode"` // Keep code content away from markup passes
	Highlight  string `yaml:"highlight"`  // Chroma style name (empty = no highlighting)
}

// ExportConfig defines PDF export options.
type ExportConfig struct {
	Page    PageConfig `yaml:"page"`
	Timeout string     `yaml:"timeout"` // Go duration (default "30s")
}

// PageConfig defines PDF page layout.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches, 0.25 to 3.0
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Render: RenderConfig{Engine: pipeline.EnginePattern},
		Export: ExportConfig{
			Page: PageConfig{
				Size:        DefaultPageSize,
				Orientation: DefaultOrientation,
				Margin:      DefaultMargin,
			},
			Timeout: DefaultExportTimeout,
		},
	}
}

// Validate checks field lengths, enums and ranges.
// Zero values are accepted and mean "use the default".
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := validateFieldLength("store.dsn", c.Store.DSN, MaxDSNLength); err != nil {
		return err
	}
	if err := c.Render.validate(); err != nil {
		return err
	}
	return c.Export.validate()
}

func (s *ServerConfig) validate() error {
	if err := validateFieldLength("server.addr", s.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.assetsDir", s.AssetsDir, MaxPathLength); err != nil {
		return err
	}
	if s.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must not be negative, got %d", ErrInvalidValue, s.MaxBodyBytes)
	}
	return validateDuration("server.shutdownTimeout", s.ShutdownTimeout)
}

func (r *RenderConfig) validate() error {
	if err := validateFieldLength("render.engine", r.Engine, MaxEngineLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.highlight", r.Highlight, MaxStyleLength); err != nil {
		return err
	}
	switch strings.ToLower(r.Engine) {
	case "", pipeline.EnginePattern, pipeline.EngineGoldmark:
	default:
		return fmt.Errorf("%w: render.engine %q (must be %s or %s)",
			ErrInvalidValue, r.Engine, pipeline.EnginePattern, pipeline.EngineGoldmark)
	}
	if err := pipeline.ValidateStyle(r.Highlight); err != nil {
		return fmt.Errorf("%w: render.highlight: %w", ErrInvalidValue, err)
	}
	return nil
}

func (e *ExportConfig) validate() error {
	if err := validateDuration("export.timeout", e.Timeout); err != nil {
		return err
	}
	return e.Page.validate()
}

func (p *PageConfig) validate() error {
	if err := validateFieldLength("export.page.size", p.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("export.page.orientation", p.Orientation, MaxOrientationLength); err != nil {
		return err
	}
	switch strings.ToLower(p.Size) {
	case "", "letter", "a4", "legal":
	default:
		return fmt.Errorf("%w: export.page.size %q (must be letter, a4 or legal)", ErrInvalidValue, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case "", "portrait", "landscape":
	default:
		return fmt.Errorf("%w: export.page.orientation %q (must be portrait or landscape)", ErrInvalidValue, p.Orientation)
	}
	if p.Margin != 0 && (p.Margin < minMargin || p.Margin > maxMargin) {
		return fmt.Errorf("%w: export.page.margin %.2f (must be between %.2f and %.1f)",
			ErrInvalidValue, p.Margin, minMargin, maxMargin)
	}
	return nil
}

// ShutdownTimeoutDuration parses ShutdownTimeout, falling back to the default.
func (s *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDurationOr(s.ShutdownTimeout, DefaultShutdownTimeout)
}

// TimeoutDuration parses Timeout, falling back to the default.
func (e *ExportConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(e.Timeout, DefaultExportTimeout)
}

func parseDurationOr(value, fallback string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// validateDuration accepts an empty value or a positive Go duration.
func validateDuration(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxDurationLength); err != nil {
		return err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, fieldName, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, fieldName, value)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Missing keys keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath, err = fileutil.ExpandHome(nameOrPath)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := yamlutil.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		if errors.Is(err, yamlutil.ErrInputTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files tried for a config name, in lookup order:
// name.yaml and name.yml in the current directory, then in
// <user config dir>/livemd/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
