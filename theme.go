package livemd

import (
	"fmt"
	"strings"
)

// Theme is the preview color scheme.
type Theme string

// Themes.
const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// DefaultTheme applies when nothing has been saved.
const DefaultTheme = Light

// Toggle icons: the icon shows the theme a click switches to.
const (
	iconSun  = "\u2600\ufe0f" // ☀️
	iconMoon = "\U0001f319"   // 🌙
)

// ParseTheme parses a theme name case-insensitively. An empty name is Light.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Light):
		return Light, nil
	case string(Dark):
		return Dark, nil
	default:
		return "", fmt.Errorf("%w: %q (must be light or dark)", ErrInvalidTheme, s)
	}
}

// Toggle returns Light for Dark and Dark for anything else.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Icon returns the toggle button label for t.
func (t Theme) Icon() string {
	if t == Dark {
		return iconSun
	}
	return iconMoon
}

func (t Theme) String() string { return string(t) }
