package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/livemd"
	"github.com/alnah/livemd/internal/config"
	"github.com/alnah/livemd/internal/fileutil"
)

// loadSettings resolves configuration with precedence:
// flags > environment > config file > defaults.
// An explicit --config wins over LIVEMD_CONFIG.
func loadSettings(common *commonFlags, engine *engineFlags) (*config.Config, error) {
	envCfg := loadEnvConfig()

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeEngineFlags(engine, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeEngineFlags overrides render settings with the flags that were set.
func mergeEngineFlags(f *engineFlags, cfg *config.Config) {
	if f.engine != "" {
		cfg.Render.Engine = f.engine
	}
	if f.shieldCode {
		cfg.Render.ShieldCode = true
	}
	if f.highlight != "" {
		cfg.Render.Highlight = f.highlight
	}
}

// newRenderer builds the renderer described by the render config.
func newRenderer(rc config.RenderConfig) (*livemd.Renderer, error) {
	opts := []livemd.Option{livemd.WithEngine(rc.Engine)}
	if rc.ShieldCode {
		opts = append(opts, livemd.WithCodeShielding())
	}
	if rc.Highlight != "" {
		opts = append(opts, livemd.WithHighlighting(rc.Highlight))
	}
	return livemd.NewRenderer(opts...)
}

// newLogger returns a text logger at info level, warn level when quiet,
// and debug level when verbose. quiet wins when both are set.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readInput reads markdown from path, or from stdin when path is "" or "-".
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			return "", ErrNoInput
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %v", ErrReadMarkdown, err)
		}
		return string(data), nil
	}

	// #nosec G304 -- path is the user's CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return string(data), nil
}

// readCSS reads an optional stylesheet. An empty path yields "".
func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := fileutil.ExpandHome(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	// #nosec G304 -- path is the user's CLI argument
	data, err := os.ReadFile(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	return string(data), nil
}

// writeOutput writes data atomically to path, or to stdout when path is "".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil
	}
	expanded, err := fileutil.ExpandHome(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFileAtomic(expanded, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// titleFromPath derives a document title from a file name:
// "docs/my-notes.md" becomes "my-notes".
func titleFromPath(path string) string {
	if path == "" || path == "-" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
