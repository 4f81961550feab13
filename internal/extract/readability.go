package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// blockSelectors are the elements whose text becomes one line each.
const blockSelectors = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td, th"

// ReadabilityExtractor isolates the main article with go-readability and
// reads its blocks with goquery. Pages readability cannot handle go to
// Fallback.
type ReadabilityExtractor struct {
	Fallback Extractor
}

func (r ReadabilityExtractor) Extract(pageURL string, input []byte) Document {
	if doc, ok := readable(pageURL, input); ok {
		return doc
	}
	if r.Fallback != nil {
		return r.Fallback.Extract(pageURL, input)
	}
	return Document{}
}

func readable(pageURL string, input []byte) (Document, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Document{}, false
	}
	article, err := readability.FromReader(bytes.NewReader(input), u)
	if err != nil {
		return Document{}, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return Document{}, false
	}
	var lines []string
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks (li > p) would repeat text; keep the innermost.
		if s.Find(blockSelectors).Length() > 0 {
			return
		}
		if line := collapseSpaces(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return Document{}, false
	}
	return Document{Title: strings.TrimSpace(article.Title), Text: strings.Join(lines, "\n")}, true
}
