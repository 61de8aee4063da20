// Package htmltext extracts plain text from scraped HTML document
// content so the classifier sniffs prose, not markup.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// LooksLikeHTML is a cheap sniff for markup in document content.
// Scraped archive pages carry full documents; plain-text extractions
// should pass through untouched.
func LooksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range []string{"<html", "<body", "<div", "<p>", "<br", "<table"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Strip parses the markup and returns its text content, with element
// boundaries collapsed to newlines so line-anchored sniffing rules
// still work. If parsing fails the input is returned unchanged.
func Strip(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		case n.Type == html.ElementNode && blockElement(n.Data):
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}

func blockElement(tag string) bool {
	switch tag {
	case "p", "div", "br", "tr", "li", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
