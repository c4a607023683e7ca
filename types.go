package livemd

import (
	"fmt"
	"strings"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// paperSizes holds portrait width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q (must be letter, a4 or legal)", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q (must be portrait or landscape)", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// dimensions returns paper width and height in inches, swapped for landscape.
// Unknown sizes fall back to letter.
func (p *PageSettings) dimensions() (width, height float64) {
	size, ok := paperSizes[strings.ToLower(p.Size)]
	if !ok {
		size = paperSizes[PageSizeLetter]
	}
	width, height = size[0], size[1]
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		width, height = height, width
	}
	return width, height
}

// ExportInput describes one document to export.
type ExportInput struct {
	Markdown  string        // Markdown source (required)
	Title     string        // Document title (optional, "Document" when empty)
	SourceDir string        // Directory relative image and link paths resolve against (optional)
	CSS       string        // Extra CSS (optional)
	Page      *PageSettings // Page settings (optional, nil = defaults)
	HTMLOnly  bool          // Skip PDF generation
}

// ExportResult holds the generated document.
type ExportResult struct {
	HTML []byte // Standalone HTML document
	PDF  []byte // Empty when HTMLOnly
}
