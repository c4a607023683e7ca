// Package store persists the editor's string slots (document content and
// theme) behind a small key/value Backend. Backends are chosen by DSN.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Keys under which the editor state is saved.
const (
	KeyContent = "markdownContent"
	KeyTheme   = "theme"
)

// DSN schemes accepted by Open.
const (
	SchemeMemory = "memory://"
	SchemeFile   = "file://"
	SchemeSQLite = "sqlite://"
)

var (
	ErrNotFound    = errors.New("store: key not found")
	ErrUnsupported = errors.New("store: unsupported DSN")
	ErrClosed      = errors.New("store: closed")
	ErrEmptyKey    = errors.New("store: empty key")
	ErrTooLarge    = errors.New("store: state too large")
)

// Backend is a string key/value store. Get returns ErrNotFound for a key
// that was never set. Implementations are safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Compile-time interface checks.
var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*File)(nil)
	_ Backend = (*SQLite)(nil)
)

// Backend kinds reported by ParseDSN.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// ParseDSN resolves dsn to a backend kind and path without opening anything:
//
//	""  or  memory://      in-process map
//	file://<path>          YAML state file
//	<path>.yaml|.yml       YAML state file
//	sqlite://<path>        SQLite database
func ParseDSN(dsn string) (kind, path string, err error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "" || dsn == SchemeMemory:
		return KindMemory, "", nil
	case strings.HasPrefix(dsn, SchemeFile):
		kind, path = KindFile, strings.TrimPrefix(dsn, SchemeFile)
	case strings.HasPrefix(dsn, SchemeSQLite):
		kind, path = KindSQLite, strings.TrimPrefix(dsn, SchemeSQLite)
	case isYAMLPath(dsn):
		kind, path = KindFile, dsn
	default:
		return "", "", fmt.Errorf("%w: %q (use memory://, file://, sqlite:// or a .yaml path)", ErrUnsupported, dsn)
	}
	if path == "" {
		return "", "", fmt.Errorf("%w: empty %s path", ErrUnsupported, kind)
	}
	return kind, path, nil
}

// Open returns the backend selected by dsn. See ParseDSN for the forms.
func Open(ctx context.Context, dsn string) (Backend, error) {
	kind, path, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindFile:
		return OpenFile(path)
	case KindSQLite:
		return OpenSQLite(ctx, path)
	default:
		return NewMemory(), nil
	}
}

func isYAMLPath(s string) bool {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "://") {
		return false
	}
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
