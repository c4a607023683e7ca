package livemd

import (
	"context"
	"fmt"
	"sync"
)

// HTMLRenderer converts markdown to an HTML fragment.
// *Renderer implements it.
type HTMLRenderer interface {
	ToHTML(ctx context.Context, markdown string) (string, error)
}

var _ HTMLRenderer = (*Renderer)(nil)

// Snapshot is the editor state shown when a page is opened.
type Snapshot struct {
	Content string `json:"content"`
	HTML    string `json:"html"`
	Theme   Theme  `json:"theme"`
	Icon    string `json:"icon"`
}

// FormatResult is the outcome of a toolbar action.
type FormatResult struct {
	Edit
	HTML string `json:"html"`
}

// Session connects an editor surface to a renderer and a store.
// Theme changes are serialized so concurrent toggles never lose an update.
type Session struct {
	renderer HTMLRenderer
	store    Store

	themeMu sync.Mutex
}

// NewSession returns a Session. A nil renderer uses the default pattern
// engine; a nil store keeps state in memory.
func NewSession(r HTMLRenderer, st Store) *Session {
	if r == nil {
		r = defaultRenderer()
	}
	if st == nil {
		st = NewMemoryStore()
	}
	return &Session{renderer: r, store: st}
}

func defaultRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(fmt.Sprintf("default renderer: %v", err))
	}
	return r
}

// Load reads the saved theme and content and renders the preview once.
func (s *Session) Load(ctx context.Context) (Snapshot, error) {
	theme, err := s.store.LoadTheme(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading theme: %w", err)
	}
	content, err := s.store.LoadContent(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading content: %w", err)
	}
	html, err := s.renderer.ToHTML(ctx, content)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Content: content, HTML: html, Theme: theme, Icon: theme.Icon()}, nil
}

// Input renders text for the preview, then saves it.
func (s *Session) Input(ctx context.Context, text string) (string, error) {
	html, err := s.renderer.ToHTML(ctx, text)
	if err != nil {
		return "", err
	}
	if err := s.store.SaveContent(ctx, text); err != nil {
		return "", fmt.Errorf("saving content: %w", err)
	}
	return html, nil
}

// Format applies a toolbar action to text and feeds the result to Input.
// An empty syntax changes nothing and saves nothing.
func (s *Session) Format(ctx context.Context, text string, sel Selection, syntax Syntax) (FormatResult, error) {
	edit, err := ApplyFormatting(text, sel, syntax)
	if err != nil {
		return FormatResult{}, err
	}
	if syntax == "" {
		html, err := s.renderer.ToHTML(ctx, text)
		if err != nil {
			return FormatResult{}, err
		}
		return FormatResult{Edit: edit, HTML: html}, nil
	}

	html, err := s.Input(ctx, edit.Text)
	if err != nil {
		return FormatResult{}, err
	}
	return FormatResult{Edit: edit, HTML: html}, nil
}

// Theme returns the saved theme.
func (s *Session) Theme(ctx context.Context) (Theme, error) {
	return s.store.LoadTheme(ctx)
}

// SetTheme saves theme.
func (s *Session) SetTheme(ctx context.Context, theme Theme) error {
	s.themeMu.Lock()
	defer s.themeMu.Unlock()
	return s.store.SaveTheme(ctx, theme)
}

// ToggleTheme flips the saved theme and returns the new one.
func (s *Session) ToggleTheme(ctx context.Context) (Theme, error) {
	s.themeMu.Lock()
	defer s.themeMu.Unlock()

	current, err := s.store.LoadTheme(ctx)
	if err != nil {
		return "", fmt.Errorf("loading theme: %w", err)
	}
	next := current.Toggle()
	if err := s.store.SaveTheme(ctx, next); err != nil {
		return "", fmt.Errorf("saving theme: %w", err)
	}
	return next, nil
}

// Render converts markdown without saving it.
func (s *Session) Render(ctx context.Context, markdown string) (string, error) {
	return s.renderer.ToHTML(ctx, markdown)
}
