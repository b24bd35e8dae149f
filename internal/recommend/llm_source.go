package recommend

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/purestream711/PureStream-sub004/internal/llm"
	"github.com/purestream711/PureStream-sub004/internal/models"
)

const systemPrompt = `You recommend movies and TV shows for a streaming catalog.
Reply with a JSON object of the form {"recommendations":[{"title":"...","year":1999}]}.
Use the original release title and the four-digit release year. Do not add commentary.`

// LLMSource asks a chat provider for candidates.
type LLMSource struct {
	provider    llm.Provider
	validate    *validator.Validate
	logger      *log.Logger
	model       string
	temperature float64
}

// LLMOption configures an LLMSource.
type LLMOption func(*LLMSource)

// WithModel overrides the provider's default model.
func WithModel(model string) LLMOption {
	return func(s *LLMSource) { s.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) LLMOption {
	return func(s *LLMSource) { s.temperature = t }
}

// WithLogger sets the logger used for malformed candidates.
func WithLogger(l *log.Logger) LLMOption {
	return func(s *LLMSource) { s.logger = l }
}

// NewLLMSource creates a Source backed by provider.
func NewLLMSource(provider llm.Provider, opts ...LLMOption) *LLMSource {
	s := &LLMSource{
		provider:    provider,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      log.Default(),
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Named.
func (s *LLMSource) Name() string {
	return "llm:" + s.provider.Name()
}

// GetCandidates implements Source.
func (s *LLMSource) GetCandidates(ctx context.Context, category models.Category, limit int) (Batch, error) {
	messages := []llm.Message{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(buildPrompt(category, limit)),
	}

	resp, err := s.provider.ChatSync(ctx, messages, llm.ChatOptions{
		Model:       s.model,
		Temperature: s.temperature,
		JSON:        true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Batch{}, ctx.Err()
		}
		return Batch{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, s.provider.Name(), err)
	}

	batch, err := s.parse(resp.Content, limit)
	if err != nil {
		return Batch{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, s.provider.Name(), err)
	}

	for _, m := range batch.Malformed {
		s.logger.Warn("skipping malformed candidate",
			"category", category.ID, "index", m.Index, "reason", m.Reason)
	}
	return batch, nil
}

func buildPrompt(category models.Category, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", category.Title)
	if category.Prompt != "" {
		fmt.Fprintf(&b, "Looking for: %s\n", category.Prompt)
	}
	fmt.Fprintf(&b, "Return up to %d recommendations.", limit)
	return b.String()
}

// parse decodes the payload element by element so one bad entry does not
// discard the rest.
func (s *LLMSource) parse(content string, limit int) (Batch, error) {
	elements, err := parseElements(content)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{Candidates: make([]models.CandidateRecommendation, 0, len(elements))}
	for i, raw := range elements {
		var c models.CandidateRecommendation
		if err := json.Unmarshal(raw, &c); err != nil {
			batch.Malformed = append(batch.Malformed, Malformed{Index: i, Raw: string(raw), Reason: err.Error()})
			continue
		}
		c.Title = strings.TrimSpace(c.Title)
		if err := s.validate.Struct(c); err != nil {
			batch.Malformed = append(batch.Malformed, Malformed{Index: i, Raw: string(raw), Reason: err.Error()})
			continue
		}
		if limit > 0 && len(batch.Candidates) == limit {
			break
		}
		batch.Candidates = append(batch.Candidates, c)
	}
	return batch, nil
}

// parseElements accepts a bare array or an object holding one array field.
func parseElements(content string) ([]json.RawMessage, error) {
	payload := bytes.TrimSpace([]byte(stripFences(content)))
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	if payload[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(payload, &elements); err != nil {
			return nil, fmt.Errorf("decode candidate list: %w", err)
		}
		return elements, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, fmt.Errorf("decode candidate payload: %w", err)
	}
	for _, key := range []string{"recommendations", "items", "results"} {
		if raw, ok := wrapper[key]; ok {
			var elements []json.RawMessage
			if err := json.Unmarshal(raw, &elements); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
			return elements, nil
		}
	}
	return nil, fmt.Errorf("no candidate list in response")
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
