package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI model constants.
const (
	OpenAIModelGPT4oMini = "gpt-4o-mini"
	OpenAIModelGPT4o     = "gpt-4o"
	OpenAIModelGPT41Mini = "gpt-4.1-mini"
	OpenAIDefaultModel   = OpenAIModelGPT4oMini
)

var openAIModels = []string{
	OpenAIModelGPT4oMini,
	OpenAIModelGPT4o,
	OpenAIModelGPT41Mini,
}

// ChatCompletionClient abstracts the go-openai client for testing.
type ChatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider implements Provider for OpenAI-compatible chat APIs.
// OpenRouter reuses it with a different base URL.
type OpenAIProvider struct {
	client       ChatCompletionClient
	name         ProviderType
	model        string
	models       []string
	jsonResponse bool
}

// NewOpenAIProviderWithClient creates an OpenAI provider over a custom client.
func NewOpenAIProviderWithClient(client ChatCompletionClient, model string) *OpenAIProvider {
	if model == "" {
		model = OpenAIDefaultModel
	}
	return &OpenAIProvider{
		client:       client,
		name:         ProviderOpenAI,
		model:        model,
		models:       openAIModels,
		jsonResponse: true,
	}
}

func newOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = OpenAIDefaultModel
	}
	if !contains(openAIModels, model) {
		return nil, fmt.Errorf("invalid OpenAI model: %s (available: %v)", model, openAIModels)
	}

	client := openai.NewClientWithConfig(openai.DefaultConfig(apiKey))
	return NewOpenAIProviderWithClient(client, model), nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return string(p.name) }

// Models returns known model IDs.
func (p *OpenAIProvider) Models() []string { return p.models }

// DefaultModel returns the configured model.
func (p *OpenAIProvider) DefaultModel() string { return p.model }

// ChatSync sends messages and waits for the complete response.
func (p *OpenAIProvider) ChatSync(ctx context.Context, messages []Message, opts ChatOptions) (*Response, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertToOpenAIMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: float32(opts.Temperature),
	}
	if opts.JSON && p.jsonResponse {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	choice := resp.Choices[0]
	return &Response{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func convertToOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		result[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}
	return result
}
