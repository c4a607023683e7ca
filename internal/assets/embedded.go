package assets

import (
	"embed"
	"fmt"
)

//go:embed web/*
var web embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) LoadAsset(name string) (*Asset, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := web.ReadFile("web/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, name)
	}
	return newAsset(name, content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
