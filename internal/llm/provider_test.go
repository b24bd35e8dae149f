package llm

import (
	"testing"

	"github.com/purestream711/PureStream-sub004/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstructors(t *testing.T) {
	t.Run("NewSystemMessage", func(t *testing.T) {
		msg := NewSystemMessage("You curate films")
		assert.Equal(t, "system", msg.Role)
		assert.Equal(t, "You curate films", msg.Content)
	})

	t.Run("NewUserMessage", func(t *testing.T) {
		msg := NewUserMessage("Trending now")
		assert.Equal(t, "user", msg.Role)
		assert.Equal(t, "Trending now", msg.Content)
	})
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		expected string
	}{
		{name: "no keys", cfg: config.LLMConfig{}, expected: ""},
		{name: "anthropic only", cfg: config.LLMConfig{AnthropicAPIKey: "a"}, expected: "anthropic"},
		{name: "openai only", cfg: config.LLMConfig{OpenAIAPIKey: "o"}, expected: "openai"},
		{name: "openrouter only", cfg: config.LLMConfig{OpenRouterAPIKey: "r"}, expected: "openrouter"},
		{
			name:     "anthropic wins over others",
			cfg:      config.LLMConfig{AnthropicAPIKey: "a", OpenAIAPIKey: "o", OpenRouterAPIKey: "r"},
			expected: "anthropic",
		},
		{
			name:     "openai wins over openrouter",
			cfg:      config.LLMConfig{OpenAIAPIKey: "o", OpenRouterAPIKey: "r"},
			expected: "openai",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectProvider(tt.cfg))
			assert.Equal(t, tt.expected != "", IsConfigured(tt.cfg))
		})
	}
}

func TestNewProvider_NoConfig(t *testing.T) {
	_, err := NewProvider(config.LLMConfig{})
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(config.LLMConfig{DefaultProvider: "bogus", OpenAIAPIKey: "o"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewProvider_ExplicitProviderMissingKey(t *testing.T) {
	_, err := NewProvider(config.LLMConfig{DefaultProvider: "openai", AnthropicAPIKey: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewProvider_AutoDetected(t *testing.T) {
	tests := []struct {
		cfg   config.LLMConfig
		name  string
		model string
	}{
		{cfg: config.LLMConfig{AnthropicAPIKey: "a"}, name: "anthropic", model: DefaultAnthropicModel},
		{cfg: config.LLMConfig{OpenAIAPIKey: "o"}, name: "openai", model: OpenAIDefaultModel},
		{cfg: config.LLMConfig{OpenRouterAPIKey: "r"}, name: "openrouter", model: OpenRouterDefaultModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.name, p.Name())
			assert.Equal(t, tt.model, p.DefaultModel())
			assert.NotEmpty(t, p.Models())
		})
	}
}

func TestNewProvider_WithModel(t *testing.T) {
	p, err := NewProvider(config.LLMConfig{AnthropicAPIKey: "a", DefaultModel: "claude-3-5-sonnet-20241022"})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-20241022", p.DefaultModel())

	_, err = NewProvider(config.LLMConfig{OpenAIAPIKey: "o", DefaultModel: "not-a-model"})
	require.Error(t, err)
}
