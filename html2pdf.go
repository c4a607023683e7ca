package livemd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/livemd/internal/fileutil"
	"github.com/alnah/livemd/internal/pipeline"
	"github.com/alnah/livemd/internal/process"
)

// DefaultExportTimeout bounds page load when the context has no deadline.
const DefaultExportTimeout = 30 * time.Second

// pdfRenderer prints a local HTML file to PDF. Tests replace it to run
// without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ pdfRenderer = (*rodRenderer)(nil)

// rodRenderer implements pdfRenderer with headless Chrome via go-rod.
// Rod downloads Chromium on first run if none is found.
type rodRenderer struct {
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser. Caller holds r.mu.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (containers).
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	// Sandboxing is unavailable in CI and most containers.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.killLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close closes the browser, then kills the Chrome process tree so helper
// processes do not outlive the export. Caller must not hold r.mu.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

// killLauncher terminates the launched process group, if any. Caller holds r.mu.
func (r *rodRenderer) killLauncher() {
	if r.launcher == nil {
		return
	}
	if pid := r.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.launcher = nil
}

// RenderFromFile opens filePath in a new tab and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	err := r.ensureBrowser()
	browser := r.browser
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tab, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer tab.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := tab.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := tab.PDF(printOptions(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// printOptions maps page settings onto Chrome's print parameters.
func printOptions(page *PageSettings) *proto.PagePrintToPDF {
	if page == nil {
		page = DefaultPageSettings()
	}
	width, height := page.dimensions()
	margin := page.Margin

	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(margin),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// Exporter turns markdown into standalone HTML and PDF documents.
type Exporter struct {
	renderer pdfRenderer
}

// ExporterOption configures an Exporter.
type ExporterOption func(*exporterConfig)

type exporterConfig struct {
	timeout time.Duration
}

// WithExportTimeout sets the page load timeout used when the context has no deadline.
func WithExportTimeout(d time.Duration) ExporterOption {
	return func(c *exporterConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewExporter returns an Exporter. The browser starts on the first PDF.
func NewExporter(opts ...ExporterOption) *Exporter {
	cfg := exporterConfig{timeout: DefaultExportTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Exporter{renderer: newRodRenderer(cfg.timeout)}
}

// ToPDF prints a complete HTML document.
func (e *Exporter) ToPDF(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error) {
	if page == nil {
		page = DefaultPageSettings()
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return e.renderer.RenderFromFile(ctx, tmpPath, page)
}

// Export renders in.Markdown with r into a standalone document and, unless
// in.HTMLOnly is set, prints it to PDF.
func (e *Exporter) Export(ctx context.Context, r *Renderer, in ExportInput) (*ExportResult, error) {
	if strings.TrimSpace(in.Markdown) == "" {
		return nil, ErrEmptyMarkdown
	}
	if err := in.Page.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = defaultRenderer()
	}

	doc, err := r.Document(ctx, in.Title, in.Markdown, in.CSS)
	if err != nil {
		return nil, err
	}
	doc, err = pipeline.RewriteRelativePaths(doc, in.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving relative paths: %w", err)
	}

	result := &ExportResult{HTML: []byte(doc)}
	if in.HTMLOnly {
		return result, nil
	}

	pdf, err := e.ToPDF(ctx, doc, in.Page)
	if err != nil {
		return nil, err
	}
	result.PDF = pdf
	return result, nil
}

// Close releases the browser.
func (e *Exporter) Close() error {
	if e.renderer == nil {
		return nil
	}
	return e.renderer.Close()
}
