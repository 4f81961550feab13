package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryOf_EchoesFirstTextLine(t *testing.T) {
	prompt := "Summarize the following page text.\n\nText:\n\n  Acme builds anvils.\nSince 1949.\n\nStructured summary:\n"
	assert.Equal(t, "Summary: Acme builds anvils.", summaryOf(prompt))
	assert.Equal(t, "Summary: (no text)", summaryOf("Text:\n\n\nStructured summary:\n"))
}

func TestHandler_ChatCompletions(t *testing.T) {
	h := newHandler("m")
	body := `{"model":"m","messages":[{"role":"system","content":"s"},{"role":"user","content":"Text:\nHello\n"}]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"Summary: Hello"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Models(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler("m").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	assert.Contains(t, rec.Body.String(), `"id":"m"`)
}
