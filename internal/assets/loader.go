package assets

import (
	"path"
)

// Asset is a loaded file.
type Asset struct {
	Name        string
	Content     []byte
	ContentType string
}

// AssetLoader loads editor assets by flat file name.
type AssetLoader interface {
	// LoadAsset returns ErrAssetNotFound if the asset doesn't exist and
	// ErrInvalidAssetName if the name is not acceptable.
	LoadAsset(name string) (*Asset, error)
}

// contentTypes maps supported extensions to their media types.
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
}

func newAsset(name string, content []byte) *Asset {
	return &Asset{Name: name, Content: content, ContentType: contentTypes[path.Ext(name)]}
}
