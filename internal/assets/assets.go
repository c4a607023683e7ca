package assets

// Asset names used by the editor page.
const (
	PageTemplate = "editor.html"
	EditorScript = "editor.js"
	EditorStyle  = "editor.css"
	LightStyle   = "light.css"
	DarkStyle    = "dark.css"
)

// PublicNames lists the assets served under /assets/.
var PublicNames = []string{EditorScript, EditorStyle, LightStyle, DarkStyle}

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// Load loads an embedded asset by name.
func Load(name string) (*Asset, error) {
	return defaultLoader.LoadAsset(name)
}

// IsPublic reports whether name may be served to browsers.
// The page template is rendered server-side and never served raw.
func IsPublic(name string) bool {
	for _, n := range PublicNames {
		if n == name {
			return true
		}
	}
	return false
}
