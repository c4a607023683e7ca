package main

import (
	"context"
	"errors"
	"os"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/livemd"
	"github.com/alnah/livemd/internal/assets"
	"github.com/alnah/livemd/internal/config"
	"github.com/alnah/livemd/internal/hints"
)

// Exit codes for the livemd CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// Sentinel errors for command I/O.
var (
	ErrNoInput      = errors.New("no input file")
	ErrReadMarkdown = errors.New("failed to read markdown")
	ErrReadCSS      = errors.New("failed to read CSS")
	ErrWriteOutput  = errors.New("failed to write output")
	ErrAddrInUse    = errors.New("address already in use")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, livemd.ErrBrowserConnect) ||
		errors.Is(err, livemd.ErrPageCreate) ||
		errors.Is(err, livemd.ErrPageLoad) ||
		errors.Is(err, livemd.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrAddrInUse) ||
		errors.Is(err, livemd.ErrUnknownEngine) ||
		errors.Is(err, livemd.ErrUnknownStyle) ||
		errors.Is(err, livemd.ErrUnsupportedStore) ||
		errors.Is(err, livemd.ErrEmptyMarkdown) ||
		errors.Is(err, livemd.ErrInvalidPageSize) ||
		errors.Is(err, livemd.ErrInvalidOrientation) ||
		errors.Is(err, livemd.ErrInvalidMargin) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns actionable advice for err, or "".
func hintFor(err error) string {
	var addrErr *addrInUseError
	switch {
	case errors.Is(err, livemd.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, livemd.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("livemd"))
	case errors.As(err, &addrErr):
		return hints.ForAddrInUse(addrErr.Addr)
	case errors.Is(err, livemd.ErrUnsupportedStore):
		return hints.ForUnsupportedStore()
	case errors.Is(err, livemd.ErrUnknownStyle):
		return hints.ForUnknownStyle(styles.Names())
	}
	return ""
}
