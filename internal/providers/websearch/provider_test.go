package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestSearchWebDegradesToMockOnTransportFailure(t *testing.T) {
	p := New(failingDoer{}, fixedClock())
	result, err := p.executeSearchWeb(context.Background(), map[string]any{"query": "golang concurrency"})
	require.NoError(t, err)

	results, ok := result.([]SearchResult)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "mock", results[0].Source)
	assert.Contains(t, results[0].Snippet, "golang concurrency")
}

func TestSearchWebClampsMaxResults(t *testing.T) {
	p := New(failingDoer{}, fixedClock())
	_, err := p.executeSearchWeb(context.Background(), map[string]any{"query": "x", "max_results": float64(500)})
	require.NoError(t, err)
}

func TestExtractContentParsesTitleAndText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Example Page</title></head><body><script>ignored()</script><p>Hello   world</p></body></html>`))
	}))
	defer server.Close()

	p := New(server.Client(), fixedClock())
	result, err := p.executeExtractContent(context.Background(), map[string]any{"url": server.URL})
	require.NoError(t, err)

	content, ok := result.(WebContent)
	require.True(t, ok)
	assert.Equal(t, "Example Page", content.Title)
	assert.Contains(t, content.TextContent, "Hello world")
}

func TestGetSearchSuggestionsClampsCount(t *testing.T) {
	p := New(failingDoer{}, fixedClock())
	result, err := p.executeGetSearchSuggestions(context.Background(), map[string]any{
		"query": "go", "max_suggestions": float64(2),
	})
	require.NoError(t, err)
	suggestions, ok := result.([]string)
	require.True(t, ok)
	assert.Len(t, suggestions, 2)
}

func TestCachedOrFetchSkipsFetchOnHit(t *testing.T) {
	calls := 0
	p := New(failingDoer{}, fixedClock())
	fetch := func() (any, error) {
		calls++
		return "value", nil
	}
	_, err := p.cachedOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	_, err = p.cachedOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type failingDoer struct{}

func (failingDoer) Do(req *http.Request) (*http.Response, error) {
	return nil, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "simulated transport failure" }
