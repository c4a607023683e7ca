package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Sentinel errors for HTML conversion.
var (
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrUnknownEngine  = errors.New("unknown render engine")
)

// Engine names accepted by NewConverter.
const (
	EnginePattern  = "pattern"
	EngineGoldmark = "goldmark"
)

// HTMLConverter abstracts Markdown to HTML fragment conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// Compile-time interface checks.
var (
	_ HTMLConverter = (*PatternConverter)(nil)
	_ HTMLConverter = (*GoldmarkConverter)(nil)
)

// NewConverter returns the converter for the named engine.
// An empty name selects the pattern engine.
func NewConverter(engine string, r *Renderer) (HTMLConverter, error) {
	if r == nil {
		r = NewRenderer()
	}
	switch strings.ToLower(engine) {
	case "", EnginePattern:
		return NewPatternConverter(r), nil
	case EngineGoldmark:
		return NewGoldmarkConverter(r.HighlightStyle()), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrUnknownEngine, engine, EnginePattern, EngineGoldmark)
	}
}

// PatternConverter adapts the substitution Renderer to HTMLConverter.
type PatternConverter struct {
	renderer *Renderer
}

// NewPatternConverter wraps r.
func NewPatternConverter(r *Renderer) *PatternConverter {
	return &PatternConverter{renderer: r}
}

// ToHTML renders content. It fails only when ctx is already done.
func (c *PatternConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.renderer.Render(content), nil
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and syntax highlighting.
// style selects the chroma style for code blocks; empty uses chroma's default.
func NewGoldmarkConverter(style string) *GoldmarkConverter {
	hlOpts := []highlighting.Option{
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true), // CSS classes, styled by /highlight.css
		),
	}
	if style != "" {
		hlOpts = append(hlOpts, highlighting.WithStyle(style))
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(hlOpts...),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Treat newlines as <br>, like the pattern engine
			html.WithXHTML(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
