package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/livemd"
	"github.com/alnah/livemd/internal/config"
)

// runExport writes one markdown file as a standalone PDF or HTML document.
func runExport(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	switch len(rest) {
	case 0:
		return ErrNoInput
	case 1:
	default:
		return fmt.Errorf("%w: export takes one input file, got %d", ErrUsage, len(rest))
	}
	input := rest[0]

	cfg, err := loadSettings(&f.common, &f.engine)
	if err != nil {
		return err
	}
	if err := mergeExportFlags(f, cfg); err != nil {
		return err
	}

	r, err := newRenderer(cfg.Render)
	if err != nil {
		return err
	}
	markdown, err := readInput(input, nil)
	if err != nil {
		return err
	}
	css, err := readCSS(f.css)
	if err != nil {
		return err
	}

	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	title := f.title
	if title == "" {
		title = titleFromPath(input)
	}

	exporter := env.NewExporter(cfg.Export.TimeoutDuration())
	defer func() { _ = exporter.Close() }()

	res, err := exporter.Export(ctx, r, livemd.ExportInput{
		Markdown:  markdown,
		Title:     title,
		SourceDir: filepath.Dir(absInput),
		CSS:       css,
		Page:      pageSettings(cfg.Export.Page),
		HTMLOnly:  f.htmlOnly,
	})
	if err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = defaultOutputPath(input, f.htmlOnly)
	}
	data := res.PDF
	if f.htmlOnly {
		data = res.HTML
	}
	if err := writeOutput(output, data, env.Stdout); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stderr, "wrote %s\n", output)
	}
	return nil
}

// mergeExportFlags overrides page and timeout settings with set flags,
// then revalidates.
func mergeExportFlags(f *exportFlags, cfg *config.Config) error {
	if f.page.size != "" {
		cfg.Export.Page.Size = f.page.size
	}
	if f.page.orientation != "" {
		cfg.Export.Page.Orientation = f.page.orientation
	}
	if f.page.margin != 0 {
		cfg.Export.Page.Margin = f.page.margin
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q (use a positive duration like 30s or 2m)", ErrUsage, f.timeout)
		}
		cfg.Export.Timeout = d.String()
	}
	return cfg.Validate()
}

// pageSettings maps the page config onto export settings. Unset fields
// take the library defaults.
func pageSettings(pc config.PageConfig) *livemd.PageSettings {
	page := livemd.DefaultPageSettings()
	if pc.Size != "" {
		page.Size = pc.Size
	}
	if pc.Orientation != "" {
		page.Orientation = pc.Orientation
	}
	if pc.Margin != 0 {
		page.Margin = pc.Margin
	}
	return page
}

// defaultOutputPath swaps the input extension for .pdf, or .html with --html.
func defaultOutputPath(input string, htmlOnly bool) string {
	ext := ".pdf"
	if htmlOnly {
		ext = ".html"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
