// Package assets serves the browser editor: the page template, its script
// and the theme stylesheets.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - files compiled in with go:embed
//	    ├── FilesystemLoader  - files from a directory on disk
//	    └── AssetResolver     - directory first, embedded fallback
//
// AssetResolver lets a user override single files (say, dark.css) from a
// directory while the rest keep their embedded versions.
//
// # Names
//
// Assets are flat file names with an html, css or js extension:
//
//	editor.html   page template (html/template)
//	editor.js     live preview client
//	editor.css    layout
//	light.css     light theme colors
//	dark.css      dark theme colors
package assets
