package livemd

import (
	"context"
	"errors"

	"github.com/alnah/livemd/internal/store"
)

// Store persists the editor buffer and theme.
// Loads return defaults ("" and Light) when nothing has been saved.
type Store interface {
	LoadContent(ctx context.Context) (string, error)
	SaveContent(ctx context.Context, content string) error
	LoadTheme(ctx context.Context) (Theme, error)
	SaveTheme(ctx context.Context, theme Theme) error
	Close() error
}

// Compile-time interface check.
var _ Store = (*backendStore)(nil)

// OpenStore opens the store described by dsn: "" or memory:// keeps state in
// memory, file://<path> or a .yaml path uses a YAML file, sqlite://<path>
// uses SQLite. Unknown schemes fail with ErrUnsupportedStore.
func OpenStore(ctx context.Context, dsn string) (Store, error) {
	b, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &backendStore{b: b}, nil
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &backendStore{b: store.NewMemory()}
}

// backendStore maps the typed Store API onto a string key/value backend.
type backendStore struct {
	b store.Backend
}

func (s *backendStore) LoadContent(ctx context.Context) (string, error) {
	v, err := s.b.Get(ctx, store.KeyContent)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *backendStore) SaveContent(ctx context.Context, content string) error {
	return s.b.Set(ctx, store.KeyContent, content)
}

// LoadTheme falls back to DefaultTheme when the saved value is missing or
// not a known theme.
func (s *backendStore) LoadTheme(ctx context.Context) (Theme, error) {
	v, err := s.b.Get(ctx, store.KeyTheme)
	if errors.Is(err, store.ErrNotFound) {
		return DefaultTheme, nil
	}
	if err != nil {
		return "", err
	}
	theme, err := ParseTheme(v)
	if err != nil {
		return DefaultTheme, nil
	}
	return theme, nil
}

func (s *backendStore) SaveTheme(ctx context.Context, theme Theme) error {
	t, err := ParseTheme(string(theme))
	if err != nil {
		return err
	}
	return s.b.Set(ctx, store.KeyTheme, string(t))
}

func (s *backendStore) Close() error {
	return s.b.Close()
}
