package pipeline

import (
	"regexp"
	"strings"
)

// Precompiled preprocessing patterns.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)
)

// Code placeholders use Unicode Private Use Area characters, which no markup
// stage matches. A placeholder is start + decimal index + end.
const (
	PlaceholderStart = "\uE000" // U+E000: Private Use Area start
	PlaceholderEnd   = "\uE001" // U+E001: Private Use Area end
)

// normalizeLineEndings converts \r\n and \r to \n.
// Every line-anchored stage depends on \n being the only line terminator.
func normalizeLineEndings(content string) string {
	if !strings.ContainsRune(content, '\r') {
		return content
	}
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// stripPlaceholderRunes removes placeholder delimiters from user input so that
// literal Private Use Area characters cannot collide with shielded code.
func stripPlaceholderRunes(content string) string {
	if !strings.ContainsAny(content, PlaceholderStart+PlaceholderEnd) {
		return content
	}
	return strings.NewReplacer(PlaceholderStart, "", PlaceholderEnd, "").Replace(content)
}
