package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnknownStyle indicates the chroma style name is not registered.
var ErrUnknownStyle = errors.New("unknown highlight style")

// classFormatter emits CSS classes instead of inline styles, so the
// stylesheet can be swapped with the editor theme.
var classFormatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.PreventSurroundingPre(true),
)

// highlightCode tokenizes code with the lexer registered for lang.
// ok is false when lang is empty, unknown, or tokenizing fails.
func highlightCode(lang, code, styleName string) (string, bool) {
	if lang == "" {
		return "", false
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var buf bytes.Buffer
	if err := classFormatter.Format(&buf, styles.Get(styleName), iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}

// ValidateStyle checks that name is a registered chroma style.
// An empty name is valid and means no highlighting.
func ValidateStyle(name string) error {
	if name == "" {
		return nil
	}
	if styles.Get(name) == styles.Fallback && !strings.EqualFold(name, styles.Fallback.Name) {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return nil
}

// HighlightCSS returns the stylesheet for the named chroma style.
func HighlightCSS(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if err := ValidateStyle(name); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := classFormatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return "", fmt.Errorf("writing highlight CSS: %w", err)
	}
	return buf.String(), nil
}
