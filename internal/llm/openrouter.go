package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// OpenRouterBaseURL is the base URL for OpenRouter's OpenAI-compatible API.
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// OpenRouterDefaultModel is the default model for OpenRouter.
	OpenRouterDefaultModel = "openai/gpt-4o-mini"
)

// OpenRouterModels lists commonly used models via OpenRouter. Any model id is accepted.
var OpenRouterModels = []string{
	"openai/gpt-4o-mini",
	"anthropic/claude-3.5-haiku",
	"meta-llama/llama-3.1-70b-instruct",
	"mistralai/mistral-large",
}

// openRouterTransport adds the attribution headers OpenRouter asks for.
type openRouterTransport struct {
	base http.RoundTripper
}

func (t *openRouterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", "https://github.com/purestream711/PureStream-sub004")
	req.Header.Set("X-Title", "PureStream Curation")
	return t.base.RoundTrip(req)
}

func newOpenRouterConfig(apiKey, baseURL string) openai.ClientConfig {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = &http.Client{Transport: &openRouterTransport{base: http.DefaultTransport}}
	return config
}

func newOpenRouterProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("OpenRouter API key is required")
	}
	if model == "" {
		model = OpenRouterDefaultModel
	}

	client := openai.NewClientWithConfig(newOpenRouterConfig(apiKey, OpenRouterBaseURL))
	return &OpenAIProvider{
		client: client,
		name:   ProviderOpenRouter,
		model:  model,
		models: OpenRouterModels,
		// Not every routed model honors response_format.
		jsonResponse: false,
	}, nil
}
