package render

import (
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/jcaMx/company-extractor-web/internal/model"
)

// PDF renders the result as a simple A4 document: heading, then one bold
// section title, summary paragraph and clickable source link per section.
func PDF(w io.Writer, res *model.ExtractionResult) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; map UTF-8 input so accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(ResultsHeading(res)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, e := range res.Summaries.Entries() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(SectionHeading(e.Name)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, para := range strings.Split(strings.TrimSpace(e.Section.Summary), "\n") {
			if strings.TrimSpace(para) == "" {
				pdf.Ln(3)
				continue
			}
			pdf.MultiCell(0, 5, tr(para), "", "L", false)
		}
		if e.Section.URL != "" {
			pdf.SetTextColor(0, 0, 200)
			pdf.WriteLinkString(5, "View original page", e.Section.URL)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}
	return pdf.Output(w)
}
