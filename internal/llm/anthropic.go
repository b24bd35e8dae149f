package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicModels lists known Anthropic models.
var AnthropicModels = []string{
	"claude-3-5-haiku-20241022",
	"claude-3-haiku-20240307",
	"claude-3-5-sonnet-20241022",
}

// DefaultAnthropicModel is fast and cheap, which suits short list prompts.
const DefaultAnthropicModel = "claude-3-5-haiku-20241022"

// MessagesClient abstracts the Anthropic messages API for testing.
type MessagesClient interface {
	CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type anthropicClientWrapper struct {
	client anthropic.Client
}

func (w *anthropicClientWrapper) CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return w.client.Messages.New(ctx, params)
}

// AnthropicProvider implements Provider using Anthropic's API.
type AnthropicProvider struct {
	client MessagesClient
	model  string
}

func newAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	if !contains(AnthropicModels, model) {
		return nil, fmt.Errorf("invalid Anthropic model: %s", model)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: &anthropicClientWrapper{client: client}, model: model}, nil
}

// NewAnthropicProviderWithClient creates an Anthropic provider over a custom client.
func NewAnthropicProviderWithClient(client MessagesClient, model string) *AnthropicProvider {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicProvider{client: client, model: model}
}

// ChatSync sends messages and waits for the complete response.
// Anthropic has no JSON response mode; opts.JSON only adds a system hint.
func (p *AnthropicProvider) ChatSync(ctx context.Context, messages []Message, opts ChatOptions) (*Response, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	msgs, system := convertAnthropicMessages(messages)
	if opts.JSON {
		system = strings.TrimSpace(system + "\nRespond with JSON only, no prose.")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := p.client.CreateMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}

	// Check Type directly so mock responses without raw JSON work too.
	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &Response{
		Content:      content.String(),
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// convertAnthropicMessages splits out system messages, which Anthropic takes
// as a dedicated parameter.
func convertAnthropicMessages(messages []Message) ([]anthropic.MessageParam, string) {
	var out []anthropic.MessageParam
	var system []string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "user":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out, strings.Join(system, "\n")
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string { return string(ProviderAnthropic) }

// Models returns known models.
func (p *AnthropicProvider) Models() []string { return AnthropicModels }

// DefaultModel returns the configured model.
func (p *AnthropicProvider) DefaultModel() string { return p.model }
