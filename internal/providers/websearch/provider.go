// Package websearch implements the web search provider (C2): rate
// limited, TTL-cached DuckDuckGo search and page-content extraction
// that degrades to a mock result on transport failure.
package websearch

import (
	"context"
	"net/http"
	"time"

	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/toolkit"
	"golang.org/x/time/rate"
)

// Provider exposes search_web, extract_content, search_and_extract, and
// get_search_suggestions.
type Provider struct {
	client  httpDoer
	limiter *rate.Limiter
	cache   *ttlCache
	now     func() time.Time
}

// New constructs the provider. client defaults to an http.Client with a
// 15-second timeout and now to time.Now when nil, overridable in tests.
func New(client httpDoer, now func() time.Time) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if now == nil {
		now = time.Now
	}
	return &Provider{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		cache:   newTTLCache(time.Hour, now),
		now:     now,
	}
}

func (p *Provider) Name() string { return "websearch" }

func (p *Provider) Initialize(ctx context.Context) error { return nil }

func (p *Provider) Shutdown(ctx context.Context) error { return nil }

func (p *Provider) Tools() []providers.ToolBinding {
	return []providers.ToolBinding{
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "websearch_search_web", Description: "Search the web via DuckDuckGo, no API key required",
				Provider: "websearch", Category: "web_search", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "query", Type: toolkit.ParamString, Required: true},
					{Name: "max_results", Type: toolkit.ParamInteger, Default: 5},
					{Name: "region", Type: toolkit.ParamString, Default: "us-en"},
				},
				Timeout: 15 * time.Second,
			},
			Executor: p.executeSearchWeb,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "websearch_extract_content", Description: "Extract readable text content from a web page",
				Provider: "websearch", Category: "web_search", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "url", Type: toolkit.ParamString, Required: true},
					{Name: "max_length", Type: toolkit.ParamInteger, Default: 2000},
				},
				Timeout: 15 * time.Second,
			},
			Executor: p.executeExtractContent,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "websearch_search_and_extract", Description: "Search the web and extract content from the top results",
				Provider: "websearch", Category: "web_search", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "query", Type: toolkit.ParamString, Required: true},
					{Name: "max_results", Type: toolkit.ParamInteger, Default: 3},
					{Name: "max_content_length", Type: toolkit.ParamInteger, Default: 1000},
				},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeSearchAndExtract,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "websearch_get_search_suggestions", Description: "Get related search query suggestions",
				Provider: "websearch", Category: "web_search", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "query", Type: toolkit.ParamString, Required: true},
					{Name: "max_suggestions", Type: toolkit.ParamInteger, Default: 5},
				},
				Timeout: 10 * time.Second,
			},
			Executor: p.executeGetSearchSuggestions,
		},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// cachedOrFetch blocks for the limiter unless served from cache.
func (p *Provider) cachedOrFetch(ctx context.Context, cacheKey string, fetch func() (any, error)) (any, error) {
	if v, ok := p.cache.get(cacheKey); ok {
		return v, nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := fetch()
	if err != nil {
		return nil, err
	}
	p.cache.set(cacheKey, v)
	return v, nil
}

func (p *Provider) executeSearchWeb(ctx context.Context, args map[string]any) (any, error) {
	query := stringArg(args, "query", "")
	maxResults := clamp(intArg(args, "max_results", 5), 1, 10)
	region := stringArg(args, "region", "us-en")

	key := "search:" + query + ":" + region
	return p.cachedOrFetch(ctx, key, func() (any, error) {
		return searchDuckDuckGo(ctx, p.client, p.now, query, maxResults, region), nil
	})
}

func (p *Provider) executeExtractContent(ctx context.Context, args map[string]any) (any, error) {
	pageURL := stringArg(args, "url", "")
	maxLength := clamp(intArg(args, "max_length", 2000), 100, 10000)

	key := "content:" + pageURL
	return p.cachedOrFetch(ctx, key, func() (any, error) {
		content, err := extractWebContent(ctx, p.client, pageURL, maxLength)
		if err != nil {
			return WebContent{URL: pageURL, TextContent: "Content extraction failed: " + err.Error(), Timestamp: p.now()}, nil
		}
		content.Timestamp = p.now()
		return content, nil
	})
}

func (p *Provider) executeSearchAndExtract(ctx context.Context, args map[string]any) (any, error) {
	query := stringArg(args, "query", "")
	maxResults := clamp(intArg(args, "max_results", 3), 1, 5)
	maxContentLength := clamp(intArg(args, "max_content_length", 1000), 100, 10000)

	searchResult, err := p.executeSearchWeb(ctx, map[string]any{
		"query": query, "max_results": float64(maxResults),
	})
	if err != nil {
		return nil, err
	}
	results, _ := searchResult.([]SearchResult)

	type extracted struct {
		SearchResult
		Content string `json:"content"`
	}
	out := make([]extracted, 0, len(results))
	for _, r := range results {
		contentAny, err := p.executeExtractContent(ctx, map[string]any{
			"url": r.URL, "max_length": float64(maxContentLength),
		})
		content := ""
		if err == nil {
			if wc, ok := contentAny.(WebContent); ok {
				content = wc.TextContent
			}
		}
		out = append(out, extracted{SearchResult: r, Content: content})
	}
	return out, nil
}

func (p *Provider) executeGetSearchSuggestions(ctx context.Context, args map[string]any) (any, error) {
	query := stringArg(args, "query", "")
	maxSuggestions := clamp(intArg(args, "max_suggestions", 5), 1, 10)

	key := "suggest:" + query
	return p.cachedOrFetch(ctx, key, func() (any, error) {
		base := []string{
			query + " tutorial", query + " examples", query + " documentation",
			query + " vs", query + " best practices", query + " github",
			query + " error", query + " reddit", query + " 2026", query + " guide",
		}
		if maxSuggestions > len(base) {
			maxSuggestions = len(base)
		}
		return base[:maxSuggestions], nil
	})
}
