// Package pipeline implements the Markdown-to-HTML rendering pipeline behind the live preview.
//
// The package is organized around one pure transformation and a few adapters:
//   - Markdown preprocessing (line ending normalization)
//   - The pattern renderer: an ordered list of regex substitution stages
//   - Optional code shielding and chroma syntax highlighting for code spans
//   - An alternate goldmark engine selectable by name
//   - Standalone HTML document building with CSS injection
//
// The pattern renderer is stateless and safe for concurrent use. Stage order is
// significant: later stages match markup produced by earlier ones, and some
// stages assume earlier stages have already consumed conflicting syntax.
package pipeline
