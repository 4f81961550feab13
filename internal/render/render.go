package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jcaMx/company-extractor-web/internal/model"
)

// SectionHeading is the display form of a section name, e.g. "ABOUT".
// Casers are stateful, so each call builds its own.
func SectionHeading(name string) string { return cases.Upper(language.Und).String(name) }

// SectionTitle is the title-cased form used in compiled text, e.g. "Case-Studies".
func SectionTitle(name string) string { return cases.Title(language.English).String(name) }

// ResultsHeading is the line shown above the sections.
func ResultsHeading(res *model.ExtractionResult) string {
	return "Results for: " + res.Company
}

// Terminal writes the result the way the form shows it, as plain text.
func Terminal(w io.Writer, res *model.ExtractionResult) error {
	if res == nil {
		return nil
	}
	var b strings.Builder
	b.WriteString(ResultsHeading(res))
	b.WriteString("\n")
	for _, e := range res.Summaries.Entries() {
		b.WriteString("\n")
		b.WriteString(SectionHeading(e.Name))
		b.WriteString("\n")
		b.WriteString(e.Section.Summary)
		b.WriteString("\n")
		fmt.Fprintf(&b, "View original page: %s\n", e.Section.URL)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Text compiles all non-empty summaries into one string, one
// "[<Section> Page]" block per section.
func Text(res *model.ExtractionResult) string {
	if res == nil {
		return ""
	}
	combined := make([]string, 0, res.Summaries.Len())
	for _, e := range res.Summaries.Entries() {
		summary := strings.TrimSpace(e.Section.Summary)
		if summary == "" {
			continue
		}
		combined = append(combined, fmt.Sprintf("[%s Page]\n%s\n", SectionTitle(e.Name), summary))
	}
	return strings.Join(combined, "\n")
}

// JSON writes the result indented, keeping section order.
func JSON(w io.Writer, res *model.ExtractionResult) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
