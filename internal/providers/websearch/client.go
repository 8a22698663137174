package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SearchResult is one hit returned by search_web.
type SearchResult struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// WebContent is the outcome of extract_content.
type WebContent struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	TextContent string    `json:"text_content"`
	Timestamp   time.Time `json:"timestamp"`
}

// httpDoer is satisfied by *http.Client; tests substitute a fake.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const userAgent = "Mozilla/5.0 (compatible; relayforge-websearch/1.0)"

// searchDuckDuckGo scrapes DuckDuckGo's HTML endpoint for up to
// maxResults hits. Any transport or parse failure returns a single
// mock result carrying the query, matching the provider's
// degrade-to-mock contract rather than surfacing the error.
func searchDuckDuckGo(ctx context.Context, client httpDoer, now func() time.Time, query string, maxResults int, region string) []SearchResult {
	results, err := doSearchDuckDuckGo(ctx, client, query, maxResults, region)
	if err != nil || len(results) == 0 {
		return []SearchResult{mockResult(query, now())}
	}
	return results
}

func mockResult(query string, now time.Time) SearchResult {
	return SearchResult{
		Title:     fmt.Sprintf("Mock result for: %s", query),
		URL:       "https://example.com/mock",
		Snippet:   fmt.Sprintf("This is a mock search result for '%s' since the live search endpoint was not accessible.", query),
		Source:    "mock",
		Timestamp: now,
	}
}

func doSearchDuckDuckGo(ctx context.Context, client httpDoer, query string, maxResults int, region string) ([]SearchResult, error) {
	endpoint := "https://html.duckduckgo.com/html/?" + url.Values{
		"q":      {query},
		"kl":     {region},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	doc.Find(".result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(results) >= maxResults {
			return false
		}
		titleSel := s.Find(".result__title a").First()
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if title == "" || href == "" {
			return true
		}
		results = append(results, SearchResult{
			Title: title, URL: href, Snippet: snippet, Source: "duckduckgo",
		})
		return true
	})
	return results, nil
}

// extractWebContent fetches pageURL and returns its title and a
// whitespace-normalized text rendering, truncated to maxLength runes.
func extractWebContent(ctx context.Context, client httpDoer, pageURL string, maxLength int) (WebContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return WebContent{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return WebContent{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return WebContent{}, fmt.Errorf("fetching %s returned %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return WebContent{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return WebContent{}, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, nav, footer").Remove()
	text := normalizeWhitespace(doc.Find("body").Text())
	if runes := []rune(text); len(runes) > maxLength {
		text = string(runes[:maxLength])
	}

	return WebContent{URL: pageURL, Title: title, TextContent: text}, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
