package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ExtractionRequest is the body posted to /api/extract.
type ExtractionRequest struct {
	URL string `json:"url"`
}

// ErrorBody is the JSON shape the API uses for failures.
type ErrorBody struct {
	Error string `json:"error"`
}

// Section is one summarised page of a company site.
type Section struct {
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// ExtractionResult is what the API returns on success.
type ExtractionResult struct {
	Company   string    `json:"company"`
	Summaries Summaries `json:"summaries"`
}

// Summaries maps section names to sections while remembering insertion
// order. JSON decoding keeps the order keys appear in the document.
type Summaries struct {
	keys  []string
	items map[string]Section
}

// Set adds or replaces a section. Replacing keeps the original position.
func (s *Summaries) Set(name string, sec Section) {
	if s.items == nil {
		s.items = make(map[string]Section)
	}
	if _, ok := s.items[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.items[name] = sec
}

// Get returns the named section.
func (s Summaries) Get(name string) (Section, bool) {
	sec, ok := s.items[name]
	return sec, ok
}

// Len returns the number of sections.
func (s Summaries) Len() int { return len(s.keys) }

// Keys returns section names in insertion order.
func (s Summaries) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Entry is a name/section pair.
type Entry struct {
	Name    string
	Section Section
}

// Entries returns all sections in insertion order.
func (s Summaries) Entries() []Entry {
	out := make([]Entry, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Entry{Name: k, Section: s.items[k]})
	}
	return out
}

func (s Summaries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(s.items[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of sections in document order. Shapes are
// not enforced: anything other than an object decodes as no sections, and a
// value that is not a section object decodes as an empty Section. Duplicate
// keys keep their first position and last value, as in a JS object literal.
func (s *Summaries) UnmarshalJSON(data []byte) error {
	*s = Summaries{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("summaries[%s]: %w", key, err)
		}
		s.Set(key, decodeSection(raw))
	}
	_, err = dec.Token()
	return err
}

// decodeSection keeps whichever of summary and url are strings.
func decodeSection(raw json.RawMessage) Section {
	var fields struct {
		Summary json.RawMessage `json:"summary"`
		URL     json.RawMessage `json:"url"`
	}
	var sec Section
	if err := json.Unmarshal(raw, &fields); err != nil {
		return sec
	}
	_ = json.Unmarshal(fields.Summary, &sec.Summary)
	_ = json.Unmarshal(fields.URL, &sec.URL)
	return sec
}

// UnmarshalJSON decodes a result without enforcing its shape. A non-string
// company is left empty and a body that is not an object gives an empty result.
func (r *ExtractionResult) UnmarshalJSON(data []byte) error {
	*r = ExtractionResult{}
	var fields struct {
		Company   json.RawMessage `json:"company"`
		Summaries Summaries       `json:"summaries"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil
		}
		return err
	}
	_ = json.Unmarshal(fields.Company, &r.Company)
	r.Summaries = fields.Summaries
	return nil
}
