package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewConverter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		engine  string
		wantErr error
		check   func(HTMLConverter) bool
	}{
		{
			name:   "empty selects pattern",
			engine: "",
			check:  func(c HTMLConverter) bool { _, ok := c.(*PatternConverter); return ok },
		},
		{
			name:   "pattern",
			engine: EnginePattern,
			check:  func(c HTMLConverter) bool { _, ok := c.(*PatternConverter); return ok },
		},
		{
			name:   "goldmark case-insensitive",
			engine: "GoldMark",
			check:  func(c HTMLConverter) bool { _, ok := c.(*GoldmarkConverter); return ok },
		},
		{
			name:    "unknown engine",
			engine:  "blackfriday",
			wantErr: ErrUnknownEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, err := NewConverter(tt.engine, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewConverter(%q) error = %v, want %v", tt.engine, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConverter(%q) unexpected error: %v", tt.engine, err)
			}
			if !tt.check(conv) {
				t.Errorf("NewConverter(%q) returned %T", tt.engine, conv)
			}
		})
	}
}

func TestPatternConverter_ToHTML(t *testing.T) {
	t.Parallel()

	conv := NewPatternConverter(NewRenderer())

	t.Run("renders", func(t *testing.T) {
		t.Parallel()

		got, err := conv.ToHTML(context.Background(), "# Hi")
		if err != nil {
			t.Fatalf("ToHTML() unexpected error: %v", err)
		}
		if got != "<h1>Hi</h1>" {
			t.Errorf("ToHTML() = %q, want %q", got, "<h1>Hi</h1>")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := conv.ToHTML(ctx, "# Hi"); !errors.Is(err, context.Canceled) {
			t.Errorf("ToHTML() error = %v, want context.Canceled", err)
		}
	})
}

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "heading with id",
			input:        "# Hello World",
			wantContains: []string{`<h1 id="hello-world">Hello World</h1>`},
		},
		{
			name:         "hard wraps",
			input:        "Line one\nLine two",
			wantContains: []string{"Line one<br />", "Line two"},
		},
		{
			name:         "GFM table",
			input:        "| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<th>A</th>", "<td>1</td>"},
		},
		{
			name:         "highlighted code block",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{`class="chroma"`},
		},
		{
			name:         "fragment only",
			input:        "text",
			wantContains: []string{"<p>text</p>"},
		},
	}

	conv := NewGoldmarkConverter("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() unexpected error: %v", err)
			}
			if strings.Contains(got, "<!DOCTYPE") {
				t.Errorf("ToHTML() should return a fragment, got document:\n%s", got)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGoldmarkConverter("").ToHTML(ctx, "# x"); !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}
