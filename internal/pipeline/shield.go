package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	// placeholderPattern matches a shielded code token.
	placeholderPattern = regexp.MustCompile(PlaceholderStart + `(\d+)` + PlaceholderEnd)

	// languageHintPattern matches a bare language name on the opening fence line.
	languageHintPattern = regexp.MustCompile(`^[\w+#-]+$`)
)

// codeVault holds code content removed from the markup stream during one render.
// It is not safe for concurrent use; Render creates one per call.
type codeVault struct {
	highlightStyle string
	entries        []string
}

func newCodeVault(highlightStyle string) *codeVault {
	return &codeVault{highlightStyle: highlightStyle}
}

// extract replaces fenced and inline code content with placeholders.
// The <pre> and <code> tags stay visible so paragraph detection still
// recognizes a code block.
func (v *codeVault) extract(content string) string {
	content = fencedCodePattern.ReplaceAllStringFunc(content, func(match string) string {
		body := fencedCodePattern.FindStringSubmatch(match)[1]
		return "<pre>" + v.store(v.renderBlock(body)) + "</pre>"
	})

	return inlineCodePattern.ReplaceAllStringFunc(content, func(match string) string {
		body := inlineCodePattern.FindStringSubmatch(match)[1]
		return "<code>" + v.store(html.EscapeString(body)) + "</code>"
	})
}

// store saves markup and returns its placeholder.
func (v *codeVault) store(markup string) string {
	v.entries = append(v.entries, markup)
	return PlaceholderStart + strconv.Itoa(len(v.entries)-1) + PlaceholderEnd
}

// restore puts shielded markup back. Unknown indexes are left as they are.
func (v *codeVault) restore(content string) string {
	if len(v.entries) == 0 {
		return content
	}
	return placeholderPattern.ReplaceAllStringFunc(content, func(token string) string {
		idx, err := strconv.Atoi(placeholderPattern.FindStringSubmatch(token)[1])
		if err != nil || idx < 0 || idx >= len(v.entries) {
			return token
		}
		return v.entries[idx]
	})
}

// renderBlock renders the body of a fenced block as <code> markup.
// Newlines are kept raw since the block sits inside <pre>.
func (v *codeVault) renderBlock(body string) string {
	if v.highlightStyle == "" {
		return "<code>" + html.EscapeString(body) + "</code>"
	}

	lang, code := splitLanguageHint(body)
	highlighted, ok := highlightCode(lang, code, v.highlightStyle)
	if !ok {
		return "<code>" + html.EscapeString(body) + "</code>"
	}
	return `<code class="language-` + html.EscapeString(lang) + `">` + highlighted + "</code>"
}

// splitLanguageHint separates the opening fence line from the code when that
// line is a bare language name. Otherwise lang is empty and code is body.
func splitLanguageHint(body string) (lang, code string) {
	first, rest, found := strings.Cut(body, "\n")
	if !found {
		return "", body
	}
	first = strings.TrimSpace(first)
	if !languageHintPattern.MatchString(first) {
		return "", body
	}
	return first, rest
}
