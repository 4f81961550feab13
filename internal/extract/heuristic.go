package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HeuristicExtractor keeps every visible text node of the page, one per
// line, dropping scripts, styles, navigation chrome and cookie banners.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(_ string, input []byte) Document {
	return FromHTML(input)
}

// FromHTML parses input and returns its title and visible text.
func FromHTML(input []byte) Document {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return Document{}
	}
	var title string
	if t := findFirst(root, "title"); t != nil {
		title = strings.TrimSpace(textOf(t))
	}
	content := findFirst(root, "body")
	if content == nil {
		content = root
	}
	var lines []string
	collect(content, &lines)
	return Document{Title: title, Text: strings.Join(lines, "\n")}
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"iframe": true, "svg": true, "nav": true, "footer": true, "aside": true,
}

func collect(n *html.Node, lines *[]string) {
	switch n.Type {
	case html.ElementNode:
		if skipped[strings.ToLower(n.Data)] || isBoilerplateContainer(n) {
			return
		}
	case html.TextNode:
		if s := collapseSpaces(n.Data); s != "" {
			*lines = append(*lines, s)
		}
		return
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, lines)
	}
}

// isBoilerplateContainer reports cookie and consent banners.
func isBoilerplateContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, marker := range []string{"cookie", "consent", "gdpr"} {
			if strings.Contains(val, marker) {
				return true
			}
		}
	}
	return false
}

// collapseSpaces trims s and folds internal whitespace runs to one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
