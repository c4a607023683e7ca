// Package yamlutil keeps goccy/go-yaml behind a small, size-bounded API.
// Config files and the YAML document store both decode through it.
package yamlutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps the bytes accepted by the decoders.
var MaxInputSize = 1 << 20

var (
	ErrEmptyInput     = errors.New("yamlutil: empty input")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func checkInput(data []byte, v any, limit int) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), limit)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data into v, ignoring unknown keys.
func Unmarshal(data []byte, v any) error {
	return decode(data, v, MaxInputSize)
}

// UnmarshalLimit is Unmarshal with limit in place of MaxInputSize.
func UnmarshalLimit(data []byte, v any, limit int) error {
	return decode(data, v, limit)
}

// UnmarshalStrict decodes data into v and rejects unknown keys.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, MaxInputSize, yaml.Strict())
}

func decode(data []byte, v any, limit int, opts ...yaml.DecodeOption) error {
	if err := checkInput(data, v, limit); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// MarshalQuoted encodes v in JSON-compatible flow style. Every string is
// double-quoted with escapes, so tabs, carriage returns, quotes and leading
// or trailing whitespace decode back unchanged.
func MarshalQuoted(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.JSON())
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}

// ReadFile reads at most MaxInputSize+1 bytes from path, so oversized files
// fail with ErrInputTooLarge without being loaded whole.
func ReadFile(path string) ([]byte, error) {
	return ReadFileLimit(path, MaxInputSize)
}

// ReadFileLimit is ReadFile with limit in place of MaxInputSize.
func ReadFileLimit(path string, limit int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: reading %s: %w", path, err)
	}
	if len(data) > limit {
		return nil, fmt.Errorf("%w: %s (max %d bytes)", ErrInputTooLarge, path, limit)
	}
	return data, nil
}
