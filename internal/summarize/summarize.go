package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jcaMx/company-extractor-web/internal/cache"
	"github.com/jcaMx/company-extractor-web/internal/llm"
)

// DefaultMaxChars is how much page text is sent to the model.
const DefaultMaxChars = 4000

// DefaultSystemPrompt frames the model as a company analyst.
const DefaultSystemPrompt = "You are an analyst reviewing company web content."

// ErrNoSubstantiveSummary means the model answered with nothing usable.
var ErrNoSubstantiveSummary = errors.New("no substantive summary")

// Summarizer turns page text into a structured analyst summary.
type Summarizer struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
	// MaxChars truncates input text in runes. Zero means DefaultMaxChars.
	MaxChars int
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
	// CacheOnly answers from cache and fails on a miss.
	CacheOnly bool
	// Sleep is used between the first attempt and the single retry.
	Sleep func(time.Duration)
}

type cached struct {
	Summary string `json:"summary"`
}

// Summarize returns the model's summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return "", errors.New("summarizer not configured")
	}
	system := DefaultSystemPrompt
	if strings.TrimSpace(s.SystemPrompt) != "" {
		system = s.SystemPrompt
	}
	user := BuildPrompt(Truncate(text, s.maxChars()))
	key := cache.KeyFrom(s.Model, system+"\n\n"+user)

	if s.Cache != nil {
		if raw, ok, _ := s.Cache.Get(ctx, key); ok {
			var c cached
			if err := json.Unmarshal(raw, &c); err == nil && strings.TrimSpace(c.Summary) != "" {
				log.Debug().Str("key", key[:12]).Msg("summary cache hit")
				return c.Summary, nil
			}
		}
	}
	if s.CacheOnly {
		return "", fmt.Errorf("cache-only: %w", ErrNoSubstantiveSummary)
	}

	req := openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		N: 1,
	}
	resp, err := s.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.sleep(100 * time.Millisecond)
		if ctx.Err() != nil {
			return "", fmt.Errorf("summary call: %w", ctx.Err())
		}
		resp, err = s.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("summary call (after retry): %w", err)
		}
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoSubstantiveSummary
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrNoSubstantiveSummary
	}
	if s.Cache != nil {
		payload, _ := json.Marshal(cached{Summary: out})
		if err := s.Cache.Save(ctx, key, payload); err != nil {
			log.Warn().Err(err).Msg("save summary cache")
		}
	}
	return out, nil
}

func (s *Summarizer) maxChars() int {
	if s.MaxChars > 0 {
		return s.MaxChars
	}
	return DefaultMaxChars
}

func (s *Summarizer) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

// BuildPrompt wraps page text in the analyst instructions.
func BuildPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following page text. Focus on:\n")
	sb.WriteString("- Operational details (departments, workflows, key processes)\n")
	sb.WriteString("- Unique value propositions\n")
	sb.WriteString("- Opportunities for using AI (automation, content generation, decision support)\n")
	sb.WriteString("\nText:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nStructured summary:\n")
	return sb.String()
}

// Truncate keeps the first max runes of s.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
