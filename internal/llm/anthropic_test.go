package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAnthropicClient struct {
	messageResponse *anthropic.Message
	messageErr      error
	capturedParams  anthropic.MessageNewParams
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	m.capturedParams = params
	if m.messageErr != nil {
		return nil, m.messageErr
	}
	return m.messageResponse, nil
}

func textMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Model:      anthropic.Model(DefaultAnthropicModel),
		StopReason: anthropic.StopReasonEndTurn,
		Content:    []anthropic.ContentBlockUnion{{Type: "text", Text: text}},
		Usage:      anthropic.Usage{InputTokens: 12, OutputTokens: 8},
	}
}

func TestNewAnthropicProvider(t *testing.T) {
	p, err := newAnthropicProvider("key", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultAnthropicModel, p.DefaultModel())
	assert.Equal(t, "anthropic", p.Name())
	assert.Equal(t, AnthropicModels, p.Models())

	_, err = newAnthropicProvider("", "")
	require.Error(t, err)
	assert.Equal(t, "API key is required", err.Error())

	_, err = newAnthropicProvider("key", "invalid-model")
	require.Error(t, err)
}

func TestConvertAnthropicMessages(t *testing.T) {
	msgs, system := convertAnthropicMessages([]Message{
		NewSystemMessage("one"),
		NewSystemMessage("two"),
		NewUserMessage("hi"),
		{Role: "assistant", Content: "hello"},
	})
	assert.Equal(t, "one\ntwo", system)
	require.Len(t, msgs, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)

	msgs, system = convertAnthropicMessages(nil)
	assert.Empty(t, msgs)
	assert.Empty(t, system)
}

func TestAnthropicProvider_ChatSync(t *testing.T) {
	mock := &mockAnthropicClient{messageResponse: textMessage(`{"items":[]}`)}
	p := NewAnthropicProviderWithClient(mock, "")

	resp, err := p.ChatSync(context.Background(), []Message{
		NewSystemMessage("curate"),
		NewUserMessage("trending"),
	}, ChatOptions{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 20, resp.Usage.TotalTokens)

	assert.Equal(t, int64(defaultMaxTokens), mock.capturedParams.MaxTokens)
	require.Len(t, mock.capturedParams.System, 1)
	assert.Contains(t, mock.capturedParams.System[0].Text, "curate")
	assert.Contains(t, mock.capturedParams.System[0].Text, "JSON only")
}

func TestAnthropicProvider_ChatSync_Overrides(t *testing.T) {
	mock := &mockAnthropicClient{messageResponse: textMessage("ok")}
	p := NewAnthropicProviderWithClient(mock, "")

	_, err := p.ChatSync(context.Background(), []Message{NewUserMessage("hi")}, ChatOptions{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 512,
	})
	require.NoError(t, err)
	assert.Equal(t, anthropic.Model("claude-3-5-sonnet-20241022"), mock.capturedParams.Model)
	assert.Equal(t, int64(512), mock.capturedParams.MaxTokens)
	assert.Empty(t, mock.capturedParams.System)
}

func TestAnthropicProvider_ChatSync_Error(t *testing.T) {
	p := NewAnthropicProviderWithClient(&mockAnthropicClient{messageErr: errors.New("overloaded")}, "")
	_, err := p.ChatSync(context.Background(), []Message{NewUserMessage("hi")}, ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestAnthropicProvider_ChatSync_SkipsNonText(t *testing.T) {
	msg := textMessage("a")
	msg.Content = append(msg.Content, anthropic.ContentBlockUnion{Type: "tool_use"}, anthropic.ContentBlockUnion{Type: "text", Text: "b"})
	p := NewAnthropicProviderWithClient(&mockAnthropicClient{messageResponse: msg}, "")

	resp, err := p.ChatSync(context.Background(), []Message{NewUserMessage("hi")}, ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ab", resp.Content)
}

func TestAnthropicProvider_ImplementsInterface(t *testing.T) {
	var _ Provider = (*AnthropicProvider)(nil)
	var _ Provider = (*OpenAIProvider)(nil)
}
