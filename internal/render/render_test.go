package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcaMx/company-extractor-web/internal/model"
)

func sample() *model.ExtractionResult {
	res := &model.ExtractionResult{Company: "Acme"}
	res.Summaries.Set("about", model.Section{Summary: "Anvils since 1949.", URL: "https://acme.com/about"})
	res.Summaries.Set("case-studies", model.Section{Summary: "  ", URL: "https://acme.com/case-studies"})
	res.Summaries.Set("careers", model.Section{Summary: "Hiring coyotes.", URL: "https://acme.com/careers"})
	return res
}

func TestTerminal_HeadingAndSectionsInOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, sample()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Results for: Acme\n"))
	about := strings.Index(out, "ABOUT")
	cs := strings.Index(out, "CASE-STUDIES")
	careers := strings.Index(out, "CAREERS")
	assert.True(t, about > 0 && about < cs && cs < careers, out)
	assert.Contains(t, out, "View original page: https://acme.com/about")
}

func TestText_SkipsEmptySummariesAndTitleCases(t *testing.T) {
	got := Text(sample())
	want := "[About Page]\nAnvils since 1949.\n\n[Careers Page]\nHiring coyotes.\n"
	assert.Equal(t, want, got)
	assert.Equal(t, "Case-Studies", SectionTitle("case-studies"))
}

func TestJSON_KeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sample()))
	var back model.ExtractionResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, []string{"about", "case-studies", "careers"}, back.Summaries.Keys())
}

func TestPDF_WritesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, sample()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
