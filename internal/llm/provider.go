// Package llm provides the chat-completion providers behind the generative
// recommendation source.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/purestream711/PureStream-sub004/internal/config"
)

// ErrNoProvider is returned when no API key is configured.
var ErrNoProvider = errors.New("no LLM provider configured: set ANTHROPIC_API_KEY, OPENAI_API_KEY, or OPENROUTER_API_KEY")

// Provider defines the interface for LLM providers.
type Provider interface {
	// ChatSync sends messages and waits for the complete response.
	ChatSync(ctx context.Context, messages []Message, opts ChatOptions) (*Response, error)

	// Name returns the provider name (e.g., "anthropic", "openai").
	Name() string

	// Models returns known model IDs for this provider.
	Models() []string

	// DefaultModel returns the default model for this provider.
	DefaultModel() string
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // Message content
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// ChatOptions configures a chat request.
type ChatOptions struct {
	Model       string  // Model to use (empty = provider default)
	MaxTokens   int     // Maximum tokens in response
	Temperature float64 // Sampling temperature (0-1)
	JSON        bool    // Ask for a JSON response where the provider supports it
}

// Response represents a complete chat response.
type Response struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Usage tracks token usage for a request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderType represents supported LLM providers.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
)

const defaultMaxTokens = 2048

// NewProvider creates a provider based on configuration.
// It auto-detects the provider if not explicitly set.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	providerName := cfg.DefaultProvider
	if providerName == "" {
		providerName = detectProvider(cfg)
	}
	if providerName == "" {
		return nil, ErrNoProvider
	}

	switch ProviderType(providerName) {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return newAnthropicProvider(cfg.AnthropicAPIKey, cfg.DefaultModel)

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return newOpenAIProvider(cfg.OpenAIAPIKey, cfg.DefaultModel)

	case ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
		}
		return newOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.DefaultModel)

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: anthropic, openai, openrouter)", providerName)
	}
}

// detectProvider picks a provider from the available API keys.
// Priority: Anthropic > OpenAI > OpenRouter
func detectProvider(cfg config.LLMConfig) string {
	switch {
	case cfg.AnthropicAPIKey != "":
		return string(ProviderAnthropic)
	case cfg.OpenAIAPIKey != "":
		return string(ProviderOpenAI)
	case cfg.OpenRouterAPIKey != "":
		return string(ProviderOpenRouter)
	}
	return ""
}

// IsConfigured returns true if any LLM provider is configured.
func IsConfigured(cfg config.LLMConfig) bool {
	return detectProvider(cfg) != ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
