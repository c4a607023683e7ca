package livemd

import (
	"errors"

	"github.com/alnah/livemd/internal/pipeline"
	"github.com/alnah/livemd/internal/store"
)

// Sentinel errors for library operations.
var (
	// Editing errors.
	ErrUnknownSyntax = errors.New("unknown formatting syntax")
	ErrInvalidTheme  = errors.New("invalid theme")

	// Rendering errors.
	ErrUnknownEngine = pipeline.ErrUnknownEngine
	ErrUnknownStyle  = pipeline.ErrUnknownStyle

	// Persistence errors.
	ErrUnsupportedStore = store.ErrUnsupported
	ErrStoreClosed      = store.ErrClosed

	// Export errors.
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
)
