package assets

import (
	"fmt"
	"regexp"
)

// assetNamePattern allows one extension and no directory components.
var assetNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.(html|css|js)$`)

// ValidateAssetName checks that name is safe to join onto a base directory.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if !assetNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
