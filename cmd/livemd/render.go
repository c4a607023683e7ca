package main

import (
	"context"
	"fmt"
)

// runRender converts one markdown file (or stdin) to HTML.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return fmt.Errorf("%w: render takes at most one input file, got %d", ErrUsage, len(rest))
	}
	var input string
	if len(rest) == 1 {
		input = rest[0]
	}

	cfg, err := loadSettings(&f.common, &f.engine)
	if err != nil {
		return err
	}
	r, err := newRenderer(cfg.Render)
	if err != nil {
		return err
	}

	markdown, err := readInput(input, env.Stdin)
	if err != nil {
		return err
	}

	var out string
	if f.standalone {
		css, err := readCSS(f.css)
		if err != nil {
			return err
		}
		title := f.title
		if title == "" {
			title = titleFromPath(input)
		}
		out, err = r.Document(ctx, title, markdown, css)
		if err != nil {
			return err
		}
	} else {
		out, err = r.ToHTML(ctx, markdown)
		if err != nil {
			return err
		}
	}

	if err := writeOutput(f.output, []byte(out), env.Stdout); err != nil {
		return err
	}
	if f.output != "" && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "wrote %s\n", f.output)
	}
	return nil
}
