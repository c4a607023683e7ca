package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/alnah/livemd"
	"github.com/alnah/livemd/internal/assets"
	"github.com/alnah/livemd/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown error", errors.New("boom"), ExitGeneral},

		{"browser connect", livemd.ErrBrowserConnect, ExitBrowser},
		{"page load wrapped", fmt.Errorf("export: %w", livemd.ErrPageLoad), ExitBrowser},
		{"pdf generation", livemd.ErrPDFGeneration, ExitBrowser},

		{"not exist", fmt.Errorf("%w: %w", ErrReadMarkdown, os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"read css", ErrReadCSS, ExitIO},
		{"no input", ErrNoInput, ExitIO},

		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config invalid", config.ErrInvalidValue, ExitUsage},
		{"usage", ErrUsage, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},
		{"addr in use", &addrInUseError{Addr: ":8080", Err: errors.New("bind")}, ExitUsage},
		{"unknown engine", livemd.ErrUnknownEngine, ExitUsage},
		{"unknown style", livemd.ErrUnknownStyle, ExitUsage},
		{"unsupported store", livemd.ErrUnsupportedStore, ExitUsage},
		{"empty markdown", livemd.ErrEmptyMarkdown, ExitUsage},
		{"page size", livemd.ErrInvalidPageSize, ExitUsage},
		{"orientation", livemd.ErrInvalidOrientation, ExitUsage},
		{"margin", livemd.ErrInvalidMargin, ExitUsage},
		{"assets dir", assets.ErrInvalidBasePath, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Actionable advice per error
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string // substring, "" means no hint
	}{
		{"browser", fmt.Errorf("%w: no chrome", livemd.ErrBrowserConnect), "livemd doctor"},
		{"timeout", fmt.Errorf("printing: %w", context.DeadlineExceeded), "--timeout"},
		{"config", config.ErrConfigNotFound, "--config"},
		{"addr", &addrInUseError{Addr: "127.0.0.1:8080", Err: errors.New("bind")}, "127.0.0.1:8080"},
		{"store", livemd.ErrUnsupportedStore, "sqlite://"},
		{"style", livemd.ErrUnknownStyle, "monokai"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want none", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestAddrInUseError(t *testing.T) {
	t.Parallel()

	cause := errors.New("bind: address already in use")
	err := error(&addrInUseError{Addr: ":8080", Err: cause})

	if !errors.Is(err, ErrAddrInUse) {
		t.Error("errors.Is(err, ErrAddrInUse) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if !strings.Contains(err.Error(), ":8080") {
		t.Errorf("Error() = %q, want the address", err.Error())
	}
}
