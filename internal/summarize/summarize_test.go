package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcaMx/company-extractor-web/internal/cache"
)

type capturingClient struct {
	reqs    []openai.ChatCompletionRequest
	errs    []error
	content string
}

func (c *capturingClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.reqs = append(c.reqs, req)
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return openai.ChatCompletionResponse{}, err
		}
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.content},
		}},
	}, nil
}

func noSleep(time.Duration) {}

func TestSummarize_SendsAnalystPrompt(t *testing.T) {
	cc := &capturingClient{content: "  Acme builds anvils.  "}
	s := &Summarizer{Client: cc, Model: "gpt-4", Sleep: noSleep}
	out, err := s.Summarize(context.Background(), "Acme has built anvils since 1949.")
	require.NoError(t, err)
	assert.Equal(t, "Acme builds anvils.", out)
	require.Len(t, cc.reqs, 1)

	req := cc.reqs[0]
	assert.Equal(t, "gpt-4", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, DefaultSystemPrompt, req.Messages[0].Content)
	user := req.Messages[1].Content
	for _, want := range []string{"Unique value propositions", "Opportunities for using AI", "Acme has built anvils since 1949.", "Structured summary:"} {
		assert.Contains(t, user, want)
	}
}

func TestSummarize_TruncatesInput(t *testing.T) {
	cc := &capturingClient{content: "ok"}
	s := &Summarizer{Client: cc, Model: "m", Sleep: noSleep}
	long := strings.Repeat("é", DefaultMaxChars) + "TAIL"
	_, err := s.Summarize(context.Background(), long)
	require.NoError(t, err)

	user := cc.reqs[0].Messages[1].Content
	assert.NotContains(t, user, "TAIL")
	assert.Equal(t, DefaultMaxChars, strings.Count(user, "é"))
}

func TestSummarize_RetriesOnce(t *testing.T) {
	cc := &capturingClient{content: "ok", errs: []error{errors.New("temporary")}}
	s := &Summarizer{Client: cc, Model: "m", Sleep: noSleep}
	_, err := s.Summarize(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, cc.reqs, 2)

	cc = &capturingClient{errs: []error{errors.New("a"), errors.New("b")}}
	s.Client = cc
	_, err = s.Summarize(context.Background(), "text")
	assert.Error(t, err)
	assert.Len(t, cc.reqs, 2, "exactly one retry")
}

func TestSummarize_EmptyCompletion(t *testing.T) {
	s := &Summarizer{Client: &capturingClient{content: "   "}, Model: "m", Sleep: noSleep}
	_, err := s.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoSubstantiveSummary)
}

func TestSummarize_CacheHitSkipsModel(t *testing.T) {
	c := &cache.LLMCache{Dir: t.TempDir()}
	first := &capturingClient{content: "cached summary"}
	s := &Summarizer{Client: first, Model: "m", Cache: c, Sleep: noSleep}
	_, err := s.Summarize(context.Background(), "text")
	require.NoError(t, err)

	second := &capturingClient{content: "fresh"}
	s.Client = second
	out, err := s.Summarize(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "cached summary", out)
	assert.Empty(t, second.reqs)

	s.CacheOnly = true
	_, err = s.Summarize(context.Background(), "other text")
	assert.ErrorIs(t, err, ErrNoSubstantiveSummary)
}

func TestSummarize_NotConfigured(t *testing.T) {
	_, err := (&Summarizer{}).Summarize(context.Background(), "x")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hé", Truncate("héllo", 2))
	assert.Equal(t, "hi", Truncate("hi", 10))
}
