package summarizer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumo/internal/config"
)

type fakeSummarizer struct {
	summary string
	err     error
	calls   atomic.Int32
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ Input) (string, error) {
	f.calls.Add(1)
	return f.summary, f.err
}

func (f *fakeSummarizer) Model() string {
	return "fake/model"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientReturnsSummary(t *testing.T) {
	backend := &fakeSummarizer{summary: "Resumo."}
	c := NewClient(backend, discardLogger())

	got, ok := c.Summarize(context.Background(), "Um parágrafo curto.")
	assert.True(t, ok)
	assert.Equal(t, "Resumo.", got)
	assert.True(t, c.Available())
	assert.Equal(t, "fake/model", c.Model())
}

func TestClientCollapsesErrors(t *testing.T) {
	errs := []error{
		errors.New("connection refused"),
		&APIError{StatusCode: http.StatusInternalServerError},
		ErrMissingSummary,
		ErrEmptyResponse,
	}

	for _, backendErr := range errs {
		t.Run(backendErr.Error(), func(t *testing.T) {
			c := NewClient(&fakeSummarizer{err: backendErr}, discardLogger())

			got, ok := c.Summarize(context.Background(), "text")
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestDisabledClient(t *testing.T) {
	c := NewClient(nil, discardLogger())

	assert.False(t, c.Available())
	assert.Empty(t, c.Model())

	for _, text := range []string{"", "text", "outro texto"} {
		got, ok := c.Summarize(context.Background(), text)
		assert.False(t, ok)
		assert.Empty(t, got)
	}
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client

	got, ok := c.Summarize(context.Background(), "text")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func newCountingServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func testConfig(token, inferenceURL string) config.Config {
	return config.Config{
		HuggingFaceToken: token,
		ModelID:          config.DefaultModelID,
		InferenceURL:     inferenceURL,
		RequestTimeout:   defaultRequestTimeout,
		Provider:         config.ProviderHuggingFace,
	}
}

func TestClientWithTokenScenario(t *testing.T) {
	srv, hits := newCountingServer(t, `[{"summary_text": "Resumo."}]`)

	backend, err := New(testConfig("hf_test", srv.URL), nil, discardLogger())
	require.NoError(t, err)

	c := NewClient(backend, discardLogger())
	got, ok := c.Summarize(context.Background(), "No período de 01 a 27 de outubro, o condomínio registrou atividades.")

	assert.True(t, ok)
	assert.Equal(t, "Resumo.", got)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientWithoutTokenScenario(t *testing.T) {
	srv, hits := newCountingServer(t, `[{"summary_text": "Resumo."}]`)

	backend, err := New(testConfig("", srv.URL), nil, discardLogger())
	require.ErrorIs(t, err, ErrMissingToken)
	require.Nil(t, backend)

	c := NewClient(backend, discardLogger())
	got, ok := c.Summarize(context.Background(), "texto")

	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, int32(0), hits.Load())
}

func TestClientShapeEquivalence(t *testing.T) {
	for _, body := range []string{`[{"summary_text": "X"}]`, `{"summary_text": "X"}`} {
		srv, _ := newCountingServer(t, body)

		backend, err := New(testConfig("hf_test", srv.URL), nil, discardLogger())
		require.NoError(t, err)

		got, ok := NewClient(backend, discardLogger()).Summarize(context.Background(), "text")
		assert.True(t, ok)
		assert.Equal(t, "X", got)
	}
}

func TestClientSendsBlankInput(t *testing.T) {
	srv, hits := newCountingServer(t, `[{"summary_text": "Resumo."}]`)

	backend, err := New(testConfig("hf_test", srv.URL), nil, discardLogger())
	require.NoError(t, err)

	got, ok := NewClient(backend, discardLogger()).Summarize(context.Background(), "   ")
	assert.True(t, ok)
	assert.Equal(t, "Resumo.", got)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientReturnsBlankSummaryAsReported(t *testing.T) {
	srv, hits := newCountingServer(t, `[{"summary_text": ""}]`)

	backend, err := New(testConfig("hf_test", srv.URL), nil, discardLogger())
	require.NoError(t, err)

	got, ok := NewClient(backend, discardLogger()).Summarize(context.Background(), "text")
	assert.True(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientMalformedResponseScenario(t *testing.T) {
	srv, _ := newCountingServer(t, `[{"label": "POSITIVE"}]`)

	backend, err := New(testConfig("hf_test", srv.URL), nil, discardLogger())
	require.NoError(t, err)

	got, ok := NewClient(backend, discardLogger()).Summarize(context.Background(), "text")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := testConfig("hf_test", "")
	cfg.Provider = "cohere"

	_, err := New(cfg, nil, discardLogger())
	assert.Error(t, err)
}

func TestNewOpenAIMissingKey(t *testing.T) {
	cfg := testConfig("hf_test", "")
	cfg.Provider = config.ProviderOpenAI

	backend, err := New(cfg, nil, discardLogger())
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Nil(t, backend)
}

func TestNewDefaultConfigCallsServerEveryTime(t *testing.T) {
	srv, hits := newCountingServer(t, `[{"summary_text": "Resumo."}]`)
	t.Setenv("HUGGINGFACE_TOKEN", "hf_test")
	t.Setenv("INFERENCE_URL", srv.URL)

	cfg, err := config.Parse()
	require.NoError(t, err)

	history := newMemoryStore()
	backend, err := New(cfg, history, discardLogger())
	require.NoError(t, err)

	c := NewClient(backend, discardLogger())
	for range 2 {
		got, ok := c.Summarize(context.Background(), "text")
		assert.True(t, ok)
		assert.Equal(t, "Resumo.", got)
	}

	assert.Equal(t, int32(2), hits.Load())
	assert.Len(t, history.items, 1)
}

func TestNewWrapsCache(t *testing.T) {
	cfg := testConfig("hf_test", "")
	cfg.CacheSize = 8
	cfg.CacheTTL = time.Hour

	backend, err := New(cfg, nil, discardLogger())
	require.NoError(t, err)

	cached, ok := backend.(*Cached)
	require.True(t, ok)
	assert.Equal(t, config.DefaultModelID, cached.Model())
}
