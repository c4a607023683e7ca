package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/livemd"
)

// Exporter is the PDF export service used by the export command.
type Exporter interface {
	Export(ctx context.Context, r *livemd.Renderer, in livemd.ExportInput) (*livemd.ExportResult, error)
	Close() error
}

// Compile-time interface implementation check.
var _ Exporter = (*livemd.Exporter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	NewExporter func(timeout time.Duration) Exporter
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewExporter: func(timeout time.Duration) Exporter {
			return livemd.NewExporter(livemd.WithExportTimeout(timeout))
		},
	}
}
