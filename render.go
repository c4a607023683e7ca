package livemd

import (
	"context"
	"fmt"

	"github.com/alnah/livemd/internal/pipeline"
)

// defaultPipeline backs the package-level Render.
var defaultPipeline = pipeline.NewRenderer()

// Render converts markdown to HTML with the default pattern pipeline.
// It is deterministic and total: every input yields an output.
func Render(markdown string) string {
	return defaultPipeline.Render(markdown)
}

// Engine names accepted by WithEngine.
const (
	EnginePattern  = pipeline.EnginePattern
	EngineGoldmark = pipeline.EngineGoldmark
)

type rendererConfig struct {
	engine    string
	shield    bool
	highlight string
}

// Option configures a Renderer.
type Option func(*rendererConfig)

// WithEngine selects the markdown engine: "pattern" (default) or "goldmark".
func WithEngine(name string) Option {
	return func(c *rendererConfig) { c.engine = name }
}

// WithCodeShielding keeps fenced and inline code content away from the
// markup passes of the pattern engine.
func WithCodeShielding() Option {
	return func(c *rendererConfig) { c.shield = true }
}

// WithHighlighting highlights fenced code with the named chroma style.
// It implies code shielding for the pattern engine.
func WithHighlighting(style string) Option {
	return func(c *rendererConfig) { c.highlight = style }
}

// Renderer converts markdown with a configured engine.
// It is safe for concurrent use.
type Renderer struct {
	engine    string
	pattern   *pipeline.Renderer
	converter pipeline.HTMLConverter
	css       string
}

// NewRenderer builds a Renderer. It fails on an unknown engine or style.
func NewRenderer(opts ...Option) (*Renderer, error) {
	cfg := rendererConfig{engine: EnginePattern}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := pipeline.ValidateStyle(cfg.highlight); err != nil {
		return nil, err
	}

	var popts []pipeline.Option
	if cfg.shield {
		popts = append(popts, pipeline.WithCodeShielding())
	}
	if cfg.highlight != "" {
		popts = append(popts, pipeline.WithHighlighting(cfg.highlight))
	}
	pattern := pipeline.NewRenderer(popts...)

	conv, err := pipeline.NewConverter(cfg.engine, pattern)
	if err != nil {
		return nil, err
	}

	css, err := pipeline.HighlightCSS(cfg.highlight)
	if err != nil {
		return nil, err
	}

	engine := EnginePattern
	if _, ok := conv.(*pipeline.GoldmarkConverter); ok {
		engine = EngineGoldmark
	}

	return &Renderer{engine: engine, pattern: pattern, converter: conv, css: css}, nil
}

// Engine returns the selected engine name.
func (r *Renderer) Engine() string { return r.engine }

// HighlightCSS returns the stylesheet for highlighted code, or "" when
// highlighting is off.
func (r *Renderer) HighlightCSS() string { return r.css }

// ToHTML converts markdown to an HTML fragment with the selected engine.
func (r *Renderer) ToHTML(ctx context.Context, markdown string) (string, error) {
	html, err := r.converter.ToHTML(ctx, markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return html, nil
}

// Document renders markdown into a standalone HTML5 document. css is
// appended after the highlight stylesheet.
func (r *Renderer) Document(ctx context.Context, title, markdown, css string) (string, error) {
	fragment, err := r.ToHTML(ctx, markdown)
	if err != nil {
		return "", err
	}
	styles := r.css
	if css != "" {
		if styles != "" {
			styles += "\n"
		}
		styles += css
	}
	return pipeline.BuildDocument(title, fragment, styles), nil
}
