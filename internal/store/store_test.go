package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends opens one of each backend under a fresh temp dir.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "state.yaml"))
	require.NoError(t, err)
	db, err := OpenSQLite(ctx, filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	mem, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)

	all := map[string]Backend{
		"memory":        NewMemory(),
		"file":          file,
		"sqlite":        db,
		"sqlite-memory": mem,
	}
	t.Cleanup(func() {
		for _, b := range all {
			_ = b.Close()
		}
	})
	return all
}

func TestBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := b.Get(ctx, KeyContent)
			require.ErrorIs(t, err, ErrNotFound)

			content := "# Title\n\n- a\n- b\n\n```\ncode: with colon\n```\n"
			require.NoError(t, b.Set(ctx, KeyContent, content))
			require.NoError(t, b.Set(ctx, KeyTheme, "dark"))

			got, err := b.Get(ctx, KeyContent)
			require.NoError(t, err)
			assert.Equal(t, content, got)

			require.NoError(t, b.Set(ctx, KeyTheme, "light"))
			theme, err := b.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "light", theme)

			require.NoError(t, b.Set(ctx, KeyContent, ""))
			got, err = b.Get(ctx, KeyContent)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestBackend_EmptyKey(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := b.Get(ctx, "")
			assert.ErrorIs(t, err, ErrEmptyKey)
			assert.ErrorIs(t, b.Set(ctx, "", "x"), ErrEmptyKey)
		})
	}
}

func TestBackend_Closed(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.Close())

			_, err := b.Get(ctx, KeyTheme)
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, b.Set(ctx, KeyTheme, "dark"), ErrClosed)
		})
	}
}

func TestBackend_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, b.Set(ctx, KeyTheme, "dark"))
			_, err := b.Get(ctx, KeyTheme)
			assert.Error(t, err)
		})
	}
}

func TestBackend_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, b.Set(ctx, KeyContent, "same"))
				}()
			}
			wg.Wait()

			got, err := b.Get(ctx, KeyContent)
			require.NoError(t, err)
			assert.Equal(t, "same", got)
		})
	}
}

func TestFile_Persists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "state.yaml")

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, KeyContent, "line1\nline2"))
	require.NoError(t, f.Set(ctx, KeyTheme, "dark"))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dark"`)

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, KeyContent)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", got)
}

func TestFile_ReopenRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "tab", content: "a\tb"},
		{name: "leading tab", content: "\tindented"},
		{name: "carriage returns", content: "line1\r\nline2\r"},
		{name: "tab then single quote", content: "\t'"},
		{name: "double quotes", content: `"q"` + "\n" + `say "hi"`},
		{name: "leading spaces", content: "    code block\n  nested"},
		{name: "trailing newlines", content: "# Title\n\n\n"},
		{name: "leading newline", content: "\n# Title after blank line"},
		{name: "yaml document markers", content: "---\nkey: value\n...\n"},
		{name: "mixed", content: " \t\r\n'\"\\ #: - |>\n"},
		{name: "larger than config cap", content: strings.Repeat("\"q\"\n", 230_000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "state.yaml")

			f, err := OpenFile(path)
			require.NoError(t, err)
			require.NoError(t, f.Set(ctx, KeyContent, tt.content))
			require.NoError(t, f.Set(ctx, KeyTheme, "light"))
			require.NoError(t, f.Close())

			reopened, err := OpenFile(path)
			require.NoError(t, err)
			defer reopened.Close()

			got, err := reopened.Get(ctx, KeyContent)
			require.NoError(t, err)
			assert.Equal(t, tt.content, got)

			theme, err := reopened.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "light", theme)
		})
	}
}

func TestFile_RejectsLossyValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f, err := OpenFile(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Set(ctx, KeyContent, "kept"))
	assert.Error(t, f.Set(ctx, KeyContent, "bad \xff byte"))

	got, err := f.Get(ctx, KeyContent)
	require.NoError(t, err)
	assert.Equal(t, "kept", got)
}

// Modifies MaxStateSize, so it does not run in parallel.
func TestFile_StateSizeLimit(t *testing.T) {
	originalMax := MaxStateSize
	t.Cleanup(func() { MaxStateSize = originalMax })
	MaxStateSize = 4096

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.yaml")
	f, err := OpenFile(path)
	require.NoError(t, err)

	// Grow the value until Set refuses it; the last accepted one sits just
	// under the limit.
	var last string
	for n := 1; ; n++ {
		value := strings.Repeat("\"q\"\n", n*16)
		err := f.Set(ctx, KeyContent, value)
		if errors.Is(err, ErrTooLarge) {
			break
		}
		require.NoError(t, err)
		last = value
		require.Less(t, n, 1000, "Set never hit the size limit")
	}
	require.NotEmpty(t, last)
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(MaxStateSize))
	assert.Greater(t, info.Size(), int64(MaxStateSize-200))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, KeyContent)
	require.NoError(t, err)
	assert.Equal(t, last, got)
}

func TestFile_EmptyAndInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	f, err := OpenFile(empty)
	require.NoError(t, err)
	_, err = f.Get(context.Background(), KeyTheme)
	assert.ErrorIs(t, err, ErrNotFound)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("theme: [unclosed"), 0o600))
	_, err = OpenFile(invalid)
	assert.Error(t, err)
}

func TestSQLite_Persists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "livemd.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, KeyTheme, "dark"))
	require.NoError(t, db.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", got)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		dsn     string
		want    any
		wantErr error
	}{
		{name: "empty", dsn: "", want: &Memory{}},
		{name: "memory scheme", dsn: "memory://", want: &Memory{}},
		{name: "file scheme", dsn: "file://" + filepath.Join(dir, "a.yaml"), want: &File{}},
		{name: "yaml path", dsn: filepath.Join(dir, "b.yaml"), want: &File{}},
		{name: "yml path", dsn: filepath.Join(dir, "c.YML"), want: &File{}},
		{name: "sqlite scheme", dsn: "sqlite://" + filepath.Join(dir, "d.db"), want: &SQLite{}},
		{name: "unknown scheme", dsn: "redis://localhost", wantErr: ErrUnsupported},
		{name: "plain path", dsn: filepath.Join(dir, "state.json"), wantErr: ErrUnsupported},
		{name: "empty file path", dsn: "file://", wantErr: ErrUnsupported},
		{name: "empty sqlite path", dsn: "sqlite://", wantErr: ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := Open(ctx, tt.dsn)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			assert.IsType(t, tt.want, b)
		})
	}
}

func TestParseDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn      string
		wantKind string
		wantPath string
		wantErr  error
	}{
		{dsn: "", wantKind: KindMemory},
		{dsn: "  memory://  ", wantKind: KindMemory},
		{dsn: "file://state.yaml", wantKind: KindFile, wantPath: "state.yaml"},
		{dsn: "~/notes.YML", wantKind: KindFile, wantPath: "~/notes.YML"},
		{dsn: "sqlite://data/livemd.db", wantKind: KindSQLite, wantPath: "data/livemd.db"},
		{dsn: "file://", wantErr: ErrUnsupported},
		{dsn: "sqlite://", wantErr: ErrUnsupported},
		{dsn: "redis://localhost", wantErr: ErrUnsupported},
		{dsn: "http://x/state.yaml", wantErr: ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			t.Parallel()

			kind, path, err := ParseDSN(tt.dsn)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}
