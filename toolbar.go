package livemd

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Syntax is a markdown delimiter inserted by a toolbar action.
type Syntax string

// Toolbar delimiters.
const (
	SyntaxBold    Syntax = "**"
	SyntaxItalic  Syntax = "*"
	SyntaxCode    Syntax = "`"
	SyntaxLink    Syntax = "[]()"
	SyntaxHeading Syntax = "# "
	SyntaxQuote   Syntax = "> "
	SyntaxList    Syntax = "- "
)

// syntaxNames maps toolbar button names to delimiters.
var syntaxNames = map[string]Syntax{
	"bold":    SyntaxBold,
	"italic":  SyntaxItalic,
	"code":    SyntaxCode,
	"link":    SyntaxLink,
	"heading": SyntaxHeading,
	"quote":   SyntaxQuote,
	"list":    SyntaxList,
}

// linkPlaceholder is the URL text inserted by the link action.
const linkPlaceholder = "url"

// ParseSyntax resolves a button name ("bold") or a raw delimiter ("**").
// An empty name yields the empty Syntax, which formats nothing.
func ParseSyntax(name string) (Syntax, error) {
	if name == "" {
		return "", nil
	}
	if s, ok := syntaxNames[strings.ToLower(name)]; ok {
		return s, nil
	}
	for _, s := range syntaxNames {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSyntax, name)
}

// IsWrap reports whether s surrounds the selection rather than prefixing it.
func (s Syntax) IsWrap() bool {
	return s == SyntaxBold || s == SyntaxItalic || s == SyntaxCode
}

// Selection is a range of rune offsets into the editor text.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Edit is the result of a toolbar action.
type Edit struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"` // rune offset of the collapsed caret
}

// ApplyFormatting inserts syntax around or before the selected runes of text.
// Offsets are clamped to the text and swapped when reversed.
//
//   - link: "[selected](url)", caret placed before "url)"
//   - bold, italic, code: "syntax selected syntax", caret after the insertion
//   - other delimiters: "syntax selected", caret after the insertion
//
// An empty syntax returns text unchanged with the caret at the selection end.
func ApplyFormatting(text string, sel Selection, syntax Syntax) (Edit, error) {
	runes := []rune(text)
	start, end := clampSelection(sel, len(runes))

	if syntax == "" {
		return Edit{Text: text, Cursor: end}, nil
	}
	if !isKnownSyntax(syntax) {
		return Edit{}, fmt.Errorf("%w: %q", ErrUnknownSyntax, string(syntax))
	}

	selected := string(runes[start:end])

	var inserted string
	var cursor int
	switch {
	case syntax == SyntaxLink:
		inserted = "[" + selected + "](" + linkPlaceholder + ")"
		cursor = start + utf8.RuneCountInString(inserted) - len(linkPlaceholder) - 1
	case syntax.IsWrap():
		inserted = string(syntax) + selected + string(syntax)
		cursor = start + utf8.RuneCountInString(inserted)
	default:
		inserted = string(syntax) + selected
		cursor = start + utf8.RuneCountInString(inserted)
	}

	var b strings.Builder
	b.Grow(len(text) + len(inserted) - len(selected))
	b.WriteString(string(runes[:start]))
	b.WriteString(inserted)
	b.WriteString(string(runes[end:]))

	return Edit{Text: b.String(), Cursor: cursor}, nil
}

func isKnownSyntax(s Syntax) bool {
	for _, known := range syntaxNames {
		if s == known {
			return true
		}
	}
	return false
}

func clampSelection(sel Selection, n int) (start, end int) {
	start, end = sel.Start, sel.End
	if start > end {
		start, end = end, start
	}
	start = max(0, min(start, n))
	end = max(0, min(end, n))
	return start, end
}
