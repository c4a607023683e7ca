package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/alnah/livemd/internal/fileutil"
	"github.com/alnah/livemd/internal/yamlutil"
)

// MaxStateSize caps the encoded state file. Set refuses writes past it, so
// every file it saves can be opened again.
var MaxStateSize = 64 << 20

// File keeps all values in one YAML mapping on disk. Every Set rewrites the
// file atomically, so an interrupted write leaves the previous state intact.
type File struct {
	path string

	mu     sync.Mutex
	values map[string]string
	closed bool
}

// OpenFile loads the YAML state file at path. A missing or empty file starts
// with no values; the file is created on the first Set.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty file path", ErrUnsupported)
	}
	path, err := fileutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	values, err := readStateFile(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, values: values}, nil
}

func readStateFile(path string) (map[string]string, error) {
	values := make(map[string]string)

	data, err := yamlutil.ReadFileLimit(path, MaxStateSize)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	if err := yamlutil.UnmarshalLimit(data, &values, MaxStateSize); err != nil {
		if errors.Is(err, yamlutil.ErrEmptyInput) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// Path returns the state file location.
func (f *File) Path() string { return f.path }

func (f *File) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkKey(key); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", ErrClosed
	}
	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

// flush writes the current values. Caller holds f.mu.
func (f *File) flush() error {
	data, err := yamlutil.MarshalQuoted(f.values)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if len(data) > MaxStateSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxStateSize)
	}
	if err := verifyState(data, f.values); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// verifyState decodes data and checks it matches values, so a value the
// encoding cannot carry (invalid UTF-8, for one) fails Set instead of
// changing on the next OpenFile.
func verifyState(data []byte, values map[string]string) error {
	var back map[string]string
	if err := yamlutil.UnmarshalLimit(data, &back, MaxStateSize); err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if !maps.Equal(back, values) {
		return errors.New("encoding state: values do not round-trip")
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
