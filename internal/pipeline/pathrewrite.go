package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativePaths resolves relative img[src] and a[href] values against
// sourceDir and turns them into file:// URLs, so a document rendered from a
// temporary file still finds images next to the markdown source.
// If sourceDir is empty, returns the HTML unchanged.
//
// URLs, anchors, absolute paths and paths escaping sourceDir are left alone.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	root, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	walkElements(root, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", absSourceDir)
		case atom.A:
			rewriteAttr(n, "href", absSourceDir)
		}
	})

	return renderHTML(root, isFragment)
}

// parseHTML parses a full document or a body fragment.
// Fragments are collected under a synthetic document node for traversal.
func parseHTML(content string) (*html.Node, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML serializes root. Fragments render their children only, so no
// <html><body> wrapper is added.
func renderHTML(root *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if !isFragment {
		if err := html.Render(&buf, root); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// walkElements calls fn for every element node under n, depth first.
func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}

// rewriteAttr rewrites attribute key on n when it holds a relative path under dir.
func rewriteAttr(n *html.Node, key, dir string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}

		absPath := filepath.Join(dir, attr.Val)
		if !isPathUnderDir(absPath, dir) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(absPath)
	}
}

// isRelativePath reports whether path is a relative filesystem path.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "file://", "data:", "mailto:"} {
		if strings.HasPrefix(path, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(path)
}

// isPathUnderDir reports whether absPath stays inside dir after cleaning.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
