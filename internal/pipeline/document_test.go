package pipeline

import (
	"strings"
	"testing"
)

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		title        string
		fragment     string
		css          string
		wantContains []string
		wantNot      []string
	}{
		{
			name:     "default title",
			fragment: "<p>x</p>",
			wantContains: []string{
				"<!DOCTYPE html>",
				`<meta charset="utf-8">`,
				"<title>Document</title>",
				"<body>\n<p>x</p>\n</body>",
			},
			wantNot: []string{"<style>"},
		},
		{
			name:         "title escaped",
			title:        "<a> & b",
			fragment:     "",
			wantContains: []string{"<title>&lt;a&gt; &amp; b</title>"},
		},
		{
			name:         "fragment with percent signs kept",
			fragment:     "<p>100%s done</p>",
			wantContains: []string{"<p>100%s done</p>"},
		},
		{
			name:         "css injected in head",
			fragment:     "<p>x</p>",
			css:          "body { color: red; }",
			wantContains: []string{"<style>body { color: red; }</style></head>"},
		},
		{
			name:         "style breakout escaped",
			css:          "a{}</style><script>alert(1)</script>",
			wantContains: []string{`<\/style><script>alert(1)<\/script>`},
			wantNot:      []string{"</style><script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BuildDocument(tt.title, tt.fragment, tt.css)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("BuildDocument() missing %q in:\n%s", want, got)
				}
			}
			for _, bad := range tt.wantNot {
				if strings.Contains(got, bad) {
					t.Errorf("BuildDocument() should not contain %q in:\n%s", bad, got)
				}
			}
		})
	}
}

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		css      string
		expected string
	}{
		{
			name:     "empty css unchanged",
			html:     "<html><head></head></html>",
			css:      "",
			expected: "<html><head></head></html>",
		},
		{
			name:     "before closing head",
			html:     "<html><head></head><body></body></html>",
			css:      "p{}",
			expected: "<html><head><style>p{}</style></head><body></body></html>",
		},
		{
			name:     "uppercase head",
			html:     "<HTML><HEAD></HEAD></HTML>",
			css:      "p{}",
			expected: "<HTML><HEAD><style>p{}</style></HEAD></HTML>",
		},
		{
			name:     "after body when no head",
			html:     `<body class="x"><p>a</p></body>`,
			css:      "p{}",
			expected: `<body class="x"><style>p{}</style><p>a</p></body>`,
		},
		{
			name:     "prepended to fragment",
			html:     "<p>a</p>",
			css:      "p{}",
			expected: "<style>p{}</style><p>a</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectCSS(tt.html, tt.css); got != tt.expected {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.expected)
			}
		})
	}
}
