package assets

import "errors"

// AssetResolver tries an override directory first and falls back to the
// embedded assets when a file is missing there.
type AssetResolver struct {
	custom   AssetLoader // nil without an override directory
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath uses
// embedded assets only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadAsset only falls back for not-found errors; validation and I/O errors
// from the override directory are returned as is.
func (r *AssetResolver) LoadAsset(name string) (*Asset, error) {
	if r.custom == nil {
		return r.embedded.LoadAsset(name)
	}

	a, err := r.custom.LoadAsset(name)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return nil, err
	}
	return r.embedded.LoadAsset(name)
}

// HasCustomLoader reports whether an override directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
