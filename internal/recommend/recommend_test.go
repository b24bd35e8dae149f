package recommend

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/purestream711/PureStream-sub004/internal/config"
	"github.com/purestream711/PureStream-sub004/internal/llm"
	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/purestream711/PureStream-sub004/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	content  string
	err      error
	calls    atomic.Int32
	messages []llm.Message
	opts     llm.ChatOptions
}

func (m *mockProvider) ChatSync(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (*llm.Response, error) {
	m.calls.Add(1)
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Response{Content: m.content}, nil
}

func (m *mockProvider) Name() string         { return "mock" }
func (m *mockProvider) Models() []string     { return []string{"mock-1"} }
func (m *mockProvider) DefaultModel() string { return "mock-1" }

var trending = models.Category{ID: "trending", Title: "Trending Now", Prompt: "popular right now"}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestLLMSource_ParsesWrappedObject(t *testing.T) {
	p := &mockProvider{content: `{"recommendations":[{"title":"Inception","year":2010},{"title":"Heat","year":1995}]}`}
	src := NewLLMSource(p, WithLogger(quiet()), WithModel("mock-1"))

	batch, err := src.GetCandidates(context.Background(), trending, 10)
	require.NoError(t, err)
	assert.Equal(t, []models.CandidateRecommendation{
		{Title: "Inception", Year: 2010},
		{Title: "Heat", Year: 1995},
	}, batch.Candidates)
	assert.Empty(t, batch.Malformed)

	assert.True(t, p.opts.JSON)
	assert.Equal(t, "mock-1", p.opts.Model)
	require.Len(t, p.messages, 2)
	assert.Contains(t, p.messages[1].Content, "Trending Now")
	assert.Contains(t, p.messages[1].Content, "up to 10")
}

func TestLLMSource_ParsesFencedArray(t *testing.T) {
	p := &mockProvider{content: "```json\n[{\"title\":\"Alien\",\"year\":1979}]\n```"}
	batch, err := NewLLMSource(p, WithLogger(quiet())).GetCandidates(context.Background(), trending, 10)
	require.NoError(t, err)
	require.Len(t, batch.Candidates, 1)
	assert.Equal(t, "Alien", batch.Candidates[0].Title)
}

func TestLLMSource_SkipsMalformedElements(t *testing.T) {
	p := &mockProvider{content: `[
		{"title":"Alien","year":1979},
		{"title":"","year":2000},
		{"title":"Dune","year":"2021"},
		{"title":"Metropolis","year":1800},
		"nonsense",
		{"title":"  Arrival ","year":2016}
	]`}
	batch, err := NewLLMSource(p, WithLogger(quiet())).GetCandidates(context.Background(), trending, 10)
	require.NoError(t, err)

	assert.Equal(t, []models.CandidateRecommendation{
		{Title: "Alien", Year: 1979},
		{Title: "Arrival", Year: 2016},
	}, batch.Candidates)
	require.Len(t, batch.Malformed, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, []int{
		batch.Malformed[0].Index, batch.Malformed[1].Index, batch.Malformed[2].Index, batch.Malformed[3].Index,
	})
}

func TestLLMSource_AllMalformedIsNotAnError(t *testing.T) {
	p := &mockProvider{content: `[{"name":"x"}]`}
	batch, err := NewLLMSource(p, WithLogger(quiet())).GetCandidates(context.Background(), trending, 10)
	require.NoError(t, err)
	assert.Empty(t, batch.Candidates)
	assert.Len(t, batch.Malformed, 1)
}

func TestLLMSource_RespectsLimit(t *testing.T) {
	p := &mockProvider{content: `[{"title":"A","year":2000},{"title":"B","year":2001},{"title":"C","year":2002}]`}
	batch, err := NewLLMSource(p, WithLogger(quiet())).GetCandidates(context.Background(), trending, 2)
	require.NoError(t, err)
	assert.Len(t, batch.Candidates, 2)
}

func TestLLMSource_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		p    *mockProvider
	}{
		{"transport error", &mockProvider{err: errors.New("503")}},
		{"not json", &mockProvider{content: "Sure! Here are some movies."}},
		{"empty", &mockProvider{content: "  "}},
		{"object without list", &mockProvider{content: `{"note":"none"}`}},
		{"list field wrong type", &mockProvider{content: `{"recommendations":"none"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMSource(tt.p, WithLogger(quiet())).GetCandidates(context.Background(), trending, 5)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestLLMSource_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &mockProvider{err: context.Canceled}

	_, err := NewLLMSource(p, WithLogger(quiet())).GetCandidates(ctx, trending, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "[]", stripFences("[]"))
	assert.Equal(t, "[]", stripFences("```json\n[]\n```"))
	assert.Equal(t, "[]", stripFences("```\n[]\n```"))
	assert.Equal(t, "[]", stripFences("```json[]```"))
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{"trending": {{Title: "A", Year: 2000}, {Title: "B", Year: 2001}}}

	batch, err := src.GetCandidates(context.Background(), trending, 1)
	require.NoError(t, err)
	assert.Len(t, batch.Candidates, 1)

	batch, err = src.GetCandidates(context.Background(), models.Category{ID: "other"}, 5)
	require.NoError(t, err)
	assert.Empty(t, batch.Candidates)
}

type flakySource struct {
	calls atomic.Int32
	err   error
}

func (f *flakySource) GetCandidates(ctx context.Context, category models.Category, limit int) (Batch, error) {
	f.calls.Add(1)
	if f.err != nil {
		return Batch{}, f.err
	}
	return Batch{Candidates: []models.CandidateRecommendation{{Title: "A", Year: 2000}}}, nil
}

func TestGuarded_PassesThrough(t *testing.T) {
	g := NewGuarded(&flakySource{}, GuardConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, quiet())
	batch, err := g.GetCandidates(context.Background(), trending, 5)
	require.NoError(t, err)
	assert.Len(t, batch.Candidates, 1)
	assert.Equal(t, "closed", g.State())
}

func TestGuarded_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakySource{err: errors.New("boom")}
	g := NewGuarded(inner, GuardConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, quiet())

	for i := 0; i < 2; i++ {
		_, err := g.GetCandidates(context.Background(), trending, 5)
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.GetCandidates(context.Background(), trending, 5)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), inner.calls.Load(), "open circuit must not reach the source")
}

func TestGuarded_CancellationDoesNotTrip(t *testing.T) {
	inner := &flakySource{err: context.Canceled}
	g := NewGuarded(inner, GuardConfig{FailureThreshold: 1, OpenTimeout: time.Minute}, quiet())

	for i := 0; i < 3; i++ {
		_, _ = g.GetCandidates(context.Background(), trending, 5)
	}
	assert.Equal(t, "closed", g.State())
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestGuarded_RateLimitHonorsContext(t *testing.T) {
	g := NewGuarded(&flakySource{}, GuardConfig{FailureThreshold: 1, RequestsPerMinute: 1}, quiet())

	_, err := g.GetCandidates(context.Background(), trending, 5)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.GetCandidates(ctx, trending, 5)
	require.Error(t, err)
}

func TestGuarded_BurstCoversOneRun(t *testing.T) {
	src := &flakySource{}
	g := NewGuarded(src, GuardConfig{FailureThreshold: 1, RequestsPerMinute: 1, Burst: 3}, quiet())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := range 3 {
		_, err := g.GetCandidates(ctx, trending, 5)
		require.NoError(t, err, "call %d", i)
	}
	_, err := g.GetCandidates(ctx, trending, 5)
	require.Error(t, err)
}

func TestDefaultGuardConfig_BurstCoversDefaultCategories(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultGuardConfig().Burst, len(models.DefaultCategories()))
}

func TestSourceName(t *testing.T) {
	llmSrc := NewLLMSource(&mockProvider{}, WithLogger(quiet()))
	assert.Equal(t, "static", SourceName(StaticSource{}))
	assert.Equal(t, "llm:mock", SourceName(llmSrc))
	assert.Equal(t, "llm:mock", SourceName(NewGuarded(llmSrc, DefaultGuardConfig(), quiet())))
	assert.Equal(t, "recommendation", SourceName(&flakySource{}))
}

func TestLLMSource_Live(t *testing.T) {
	testutil.SkipUnlessLive(t, "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")

	cfg, err := config.Load()
	require.NoError(t, err)
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		t.Skipf("no provider: %v", err)
	}

	batch, err := NewLLMSource(provider).GetCandidates(context.Background(), trending, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.Candidates)
}
