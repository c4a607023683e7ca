// Package livemd is the backend of a live markdown editor.
//
// # Rendering
//
// Render converts markdown to an HTML fragment with a fixed, ordered list of
// pattern substitutions. It never fails and has no side effects:
//
//	html := livemd.Render("# Hello\n\nSome **bold** text")
//	// <h1>Hello</h1><br><p>Some <strong>bold</strong> text</p>
//
// The substitutions are deliberately simple: no nesting, no escaping, raw
// HTML passes through. Fenced code content is visible to later passes unless
// the renderer is built with WithCodeShielding:
//
//	r, err := livemd.NewRenderer(
//	    livemd.WithCodeShielding(),
//	    livemd.WithHighlighting("monokai"),
//	)
//
// WithEngine("goldmark") selects a CommonMark renderer for callers that want
// one; the pattern engine is the default.
//
// # Editing
//
// ApplyFormatting implements the toolbar: it wraps or prefixes the selected
// runes with a markdown delimiter and returns the new text and caret offset.
// Theme is the light/dark preview theme.
//
// # Sessions
//
// A Session ties a renderer to a Store. Input renders and saves the buffer,
// Format applies a toolbar action, ToggleTheme flips and saves the theme:
//
//	st, err := livemd.OpenStore(ctx, "sqlite://~/.local/share/livemd/state.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	sess := livemd.NewSession(r, st)
//	snap, err := sess.Load(ctx)
//
// Stores are selected by DSN: memory://, file://<path> (or a .yaml path) and
// sqlite://<path>.
//
// # Export
//
// Exporter prints a standalone HTML document to PDF through headless Chrome.
// The browser starts on first use and is released by Close.
package livemd
