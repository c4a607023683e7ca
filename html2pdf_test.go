package livemd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/livemd/internal/fileutil"
)

// mockRenderer implements pdfRenderer without a browser.
type mockRenderer struct {
	Result     []byte
	Err        error
	CalledWith string
	CalledPage *PageSettings
	HTML       string
	Closed     bool
}

func (m *mockRenderer) RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.CalledWith = filePath
	m.CalledPage = page
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	m.HTML = string(data)
	return m.Result, m.Err
}

func (m *mockRenderer) Close() error {
	m.Closed = true
	return nil
}

func TestExporter_ToPDF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    *PageSettings
		mock    *mockRenderer
		wantErr error
	}{
		{
			name: "default page settings",
			mock: &mockRenderer{Result: []byte("%PDF-1.4")},
		},
		{
			name: "custom page settings",
			page: &PageSettings{Size: PageSizeA4, Orientation: OrientationLandscape, Margin: 1},
			mock: &mockRenderer{Result: []byte("%PDF-1.4")},
		},
		{
			name:    "invalid page size",
			page:    &PageSettings{Size: "tabloid", Orientation: OrientationPortrait, Margin: 1},
			mock:    &mockRenderer{},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "renderer error propagates",
			mock:    &mockRenderer{Err: ErrPDFGeneration},
			wantErr: ErrPDFGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := &Exporter{renderer: tt.mock}
			pdf, err := e.ToPDF(context.Background(), "<html><body>x</body></html>", tt.page)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToPDF() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPDF() unexpected error: %v", err)
			}
			if string(pdf) != string(tt.mock.Result) {
				t.Errorf("ToPDF() = %q, want %q", pdf, tt.mock.Result)
			}
			if !strings.Contains(filepath.Base(tt.mock.CalledWith), fileutil.TempPrefix) {
				t.Errorf("renderer called with %q, want temp file", tt.mock.CalledWith)
			}
			if _, err := os.Stat(tt.mock.CalledWith); !os.IsNotExist(err) {
				t.Error("temp file should be removed after export")
			}
			if tt.mock.CalledPage == nil {
				t.Error("renderer should receive page settings")
			}
		})
	}
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("html only skips pdf", func(t *testing.T) {
		t.Parallel()

		mock := &mockRenderer{Result: []byte("%PDF")}
		e := &Exporter{renderer: mock}

		res, err := e.Export(context.Background(), r, ExportInput{
			Markdown:  "# Title\n\n![logo](img/logo.png)",
			Title:     "Notes",
			SourceDir: dir,
			HTMLOnly:  true,
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if len(res.PDF) != 0 || mock.CalledWith != "" {
			t.Error("Export() with HTMLOnly should not print")
		}
		html := string(res.HTML)
		for _, want := range []string{"<title>Notes</title>", "<h1>Title</h1>", `src="file://`} {
			if !strings.Contains(html, want) {
				t.Errorf("HTML missing %q:\n%s", want, html)
			}
		}
	})

	t.Run("prints rendered document", func(t *testing.T) {
		t.Parallel()

		mock := &mockRenderer{Result: []byte("%PDF-1.7")}
		e := &Exporter{renderer: mock}

		res, err := e.Export(context.Background(), nil, ExportInput{Markdown: "**x**", CSS: "p{color:red}"})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if string(res.PDF) != "%PDF-1.7" {
			t.Errorf("PDF = %q", res.PDF)
		}
		if !strings.Contains(mock.HTML, "<strong>x</strong>") || !strings.Contains(mock.HTML, "p{color:red}") {
			t.Errorf("printed HTML = %q", mock.HTML)
		}
	})

	t.Run("empty markdown", func(t *testing.T) {
		t.Parallel()

		e := &Exporter{renderer: &mockRenderer{}}
		if _, err := e.Export(context.Background(), r, ExportInput{Markdown: "  \n"}); !errors.Is(err, ErrEmptyMarkdown) {
			t.Errorf("Export() error = %v, want ErrEmptyMarkdown", err)
		}
	})

	t.Run("invalid margin", func(t *testing.T) {
		t.Parallel()

		e := &Exporter{renderer: &mockRenderer{}}
		_, err := e.Export(context.Background(), r, ExportInput{
			Markdown: "x",
			Page:     &PageSettings{Size: PageSizeLetter, Orientation: OrientationPortrait, Margin: 5},
		})
		if !errors.Is(err, ErrInvalidMargin) {
			t.Errorf("Export() error = %v, want ErrInvalidMargin", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := &Exporter{renderer: &mockRenderer{}}
		if _, err := e.Export(ctx, r, ExportInput{Markdown: "x"}); !errors.Is(err, context.Canceled) {
			t.Errorf("Export() error = %v, want context.Canceled", err)
		}
	})
}

func TestExporter_Close(t *testing.T) {
	t.Parallel()

	mock := &mockRenderer{}
	e := &Exporter{renderer: mock}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.Closed {
		t.Error("Close() should close the renderer")
	}

	if err := (&Exporter{}).Close(); err != nil {
		t.Errorf("Close() on empty exporter = %v", err)
	}
}

func TestRodRenderer_CloseWithoutBrowser(t *testing.T) {
	t.Parallel()

	if err := newRodRenderer(DefaultExportTimeout).Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestPrintOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       *PageSettings
		wantW      float64
		wantH      float64
		wantMargin float64
	}{
		{name: "nil uses defaults", page: nil, wantW: 8.5, wantH: 11, wantMargin: DefaultMargin},
		{name: "letter landscape", page: &PageSettings{Size: "letter", Orientation: "landscape", Margin: 0.5}, wantW: 11, wantH: 8.5, wantMargin: 0.5},
		{name: "a4 portrait", page: &PageSettings{Size: "a4", Orientation: "portrait", Margin: 1}, wantW: 8.27, wantH: 11.69, wantMargin: 1},
		{name: "legal landscape", page: &PageSettings{Size: "LEGAL", Orientation: "Landscape", Margin: 2}, wantW: 14, wantH: 8.5, wantMargin: 2},
		{name: "unknown size falls back to letter", page: &PageSettings{Size: "tabloid", Orientation: "portrait", Margin: 0.5}, wantW: 8.5, wantH: 11, wantMargin: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := printOptions(tt.page)
			if *opts.PaperWidth != tt.wantW || *opts.PaperHeight != tt.wantH {
				t.Errorf("paper = %vx%v, want %vx%v", *opts.PaperWidth, *opts.PaperHeight, tt.wantW, tt.wantH)
			}
			for _, m := range []*float64{opts.MarginTop, opts.MarginBottom, opts.MarginLeft, opts.MarginRight} {
				if *m != tt.wantMargin {
					t.Errorf("margin = %v, want %v", *m, tt.wantMargin)
				}
			}
			if !opts.PrintBackground {
				t.Error("PrintBackground should be set")
			}
		})
	}
}
