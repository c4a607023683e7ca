package pipeline

import (
	"regexp"
	"strings"
)

// Precompiled stage patterns. Line-anchored patterns use multiline mode;
// "." never crosses a line break unless the pattern sets the s flag.
var (
	// Code
	fencedCodePattern = regexp.MustCompile("```([\\s\\S]*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")

	// Headers, longest marker first
	h3Pattern = regexp.MustCompile(`(?m)^### (.*)$`)
	h2Pattern = regexp.MustCompile(`(?m)^## (.*)$`)
	h1Pattern = regexp.MustCompile(`(?m)^# (.*)$`)

	// Emphasis, bold before italic
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.+?)\*`)

	// Images before links
	imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkPattern  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	// Line blocks
	blockquotePattern = regexp.MustCompile(`(?m)^> (.+)`)
	rulePattern       = regexp.MustCompile(`(?m)^---$`)

	// Lists
	unorderedItemPattern = regexp.MustCompile(`(?m)^- (.+)`)
	listItemRunPattern   = regexp.MustCompile(`(?s)(<li>.*</li>)`)
	orderedItemPattern   = regexp.MustCompile(`(?m)^\d+\. (.+)`)

	// Paragraph blocks that already start with one of these tags are left alone
	blockTagPattern = regexp.MustCompile(`^<(h|ul|ol|li|blockquote|pre|hr)`)
)

// paragraphSeparator splits the accumulated markup into paragraph blocks.
const paragraphSeparator = "\n\n"

// Stage is one substitution pass of the pipeline.
type Stage struct {
	Name      string
	Transform func(string) string
}

// codeStages run first. They are replaced by placeholder extraction when
// code shielding is enabled.
var codeStages = []Stage{
	{Name: "fenced-code", Transform: convertFencedCode},
	{Name: "inline-code", Transform: convertInlineCode},
}

// markupStages run after the code stages, in this exact order.
var markupStages = []Stage{
	{Name: "h3", Transform: replacer(h3Pattern, "<h3>${1}</h3>")},
	{Name: "h2", Transform: replacer(h2Pattern, "<h2>${1}</h2>")},
	{Name: "h1", Transform: replacer(h1Pattern, "<h1>${1}</h1>")},
	{Name: "bold", Transform: replacer(boldPattern, "<strong>${1}</strong>")},
	{Name: "italic", Transform: replacer(italicPattern, "<em>${1}</em>")},
	{Name: "image", Transform: replacer(imagePattern, `<img src="${2}" alt="${1}">`)},
	{Name: "link", Transform: replacer(linkPattern, `<a href="${2}" target="_blank">${1}</a>`)},
	{Name: "blockquote", Transform: replacer(blockquotePattern, "<blockquote>${1}</blockquote>")},
	{Name: "rule", Transform: replacer(rulePattern, "<hr>")},
	{Name: "unordered-list", Transform: convertUnorderedList},
	{Name: "ordered-list", Transform: replacer(orderedItemPattern, "<li>${1}</li>")},
	{Name: "paragraphs", Transform: wrapParagraphs},
	{Name: "line-breaks", Transform: convertLineBreaks},
}

// Stages returns the names of the pipeline stages in execution order.
func Stages() []string {
	names := make([]string, 0, len(codeStages)+len(markupStages))
	for _, s := range codeStages {
		names = append(names, s.Name)
	}
	for _, s := range markupStages {
		names = append(names, s.Name)
	}
	return names
}

// Renderer converts the restricted markdown dialect to an HTML fragment.
// The zero value is not usable; create one with NewRenderer.
type Renderer struct {
	shield         bool
	highlightStyle string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCodeShielding hides fenced and inline code content from the markup
// stages and restores it HTML-escaped at the end. Without it, text inside
// code is still matched by headers, emphasis and the other stages.
func WithCodeShielding() Option {
	return func(r *Renderer) {
		r.shield = true
	}
}

// WithHighlighting highlights fenced code blocks with the named chroma style.
// The first line of a block names the language. Implies WithCodeShielding.
// An empty style disables highlighting.
func WithHighlighting(style string) Option {
	return func(r *Renderer) {
		r.highlightStyle = style
		if style != "" {
			r.shield = true
		}
	}
}

// NewRenderer creates a Renderer. With no options it reproduces the plain
// substitution pipeline exactly.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Shielded reports whether code content is protected from markup stages.
func (r *Renderer) Shielded() bool {
	return r.shield
}

// HighlightStyle returns the chroma style name, or "" when highlighting is off.
func (r *Renderer) HighlightStyle() string {
	return r.highlightStyle
}

// Render converts markdown to HTML. It never fails: any input, including the
// empty string, produces a string.
func (r *Renderer) Render(markdown string) string {
	content := normalizeLineEndings(markdown)
	if !r.shield {
		content = applyStages(content, codeStages)
		return applyStages(content, markupStages)
	}

	v := newCodeVault(r.highlightStyle)
	content = v.extract(stripPlaceholderRunes(content))
	content = applyStages(content, markupStages)
	return v.restore(content)
}

// applyStages runs stages in order, each on the previous stage's output.
func applyStages(content string, stages []Stage) string {
	for _, s := range stages {
		content = s.Transform(content)
	}
	return content
}

// replacer returns a stage that replaces every match of re with template.
func replacer(re *regexp.Regexp, template string) func(string) string {
	return func(content string) string {
		return re.ReplaceAllString(content, template)
	}
}

// convertFencedCode wraps triple-backtick regions in <pre><code>.
func convertFencedCode(content string) string {
	return fencedCodePattern.ReplaceAllString(content, "<pre><code>${1}</code></pre>")
}

// convertInlineCode wraps single-backtick spans in <code>.
func convertInlineCode(content string) string {
	return inlineCodePattern.ReplaceAllString(content, "<code>${1}</code>")
}

// convertUnorderedList turns "- " lines into <li> elements, then wraps the
// first match of a dot-all greedy <li>...</li> span in a single <ul>.
// The span runs from the first item to the last </li> in the document, so
// only one container is ever produced.
func convertUnorderedList(content string) string {
	content = unorderedItemPattern.ReplaceAllString(content, "<li>${1}</li>")

	loc := listItemRunPattern.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return content[:loc[0]] + "<ul>" + content[loc[0]:loc[1]] + "</ul>" + content[loc[1]:]
}

// wrapParagraphs splits on blank lines and wraps every block that does not
// already start with a block-level tag in <p>. Empty blocks are dropped.
func wrapParagraphs(content string) string {
	blocks := strings.Split(content, paragraphSeparator)
	out := make([]string, 0, len(blocks))

	for _, block := range blocks {
		trimmed := strings.TrimSpace(block)
		switch {
		case trimmed == "":
			continue
		case blockTagPattern.MatchString(trimmed):
			out = append(out, block)
		default:
			out = append(out, "<p>"+trimmed+"</p>")
		}
	}

	return strings.Join(out, "\n")
}

// convertLineBreaks turns every remaining newline into <br>.
func convertLineBreaks(content string) string {
	return strings.ReplaceAll(content, "\n", "<br>")
}
