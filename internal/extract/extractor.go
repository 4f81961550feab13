package extract

import (
	"fmt"
	"strings"
)

// Document is the readable part of a page.
type Document struct {
	Title string
	Text  string
}

// Extractor turns raw HTML into a Document. Implementations must not touch
// the network; pageURL is only used to resolve relative references.
type Extractor interface {
	Extract(pageURL string, input []byte) Document
}

// Mode names an extraction strategy in config.
type Mode string

const (
	ModeHeuristic   Mode = "heuristic"
	ModeReadability Mode = "readability"
)

// ForMode returns the extractor for a configured mode. Empty means heuristic.
func ForMode(mode string) (Extractor, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(mode))) {
	case "", ModeHeuristic:
		return HeuristicExtractor{}, nil
	case ModeReadability:
		return ReadabilityExtractor{Fallback: HeuristicExtractor{}}, nil
	default:
		return nil, fmt.Errorf("unknown extract mode %q (want heuristic or readability)", mode)
	}
}
