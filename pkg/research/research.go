package research

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/harunnryd/newsroom/pkg/errorsx"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

// Client fetches topical web results from Brave Search and flattens them
// into markdown notes for script generation. Research is best-effort: a
// missing key or a failed fetch degrades to a no-research note rather
// than failing the run.
type Client struct {
	APIKey  string
	BaseURL string
	Count   int
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey: apiKey,
		Count:  10,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age"`
}

type searchResponse struct {
	Web struct {
		Results []searchResult `json:"results"`
	} `json:"web"`
}

// Notes researches a topic and returns a markdown summary. Never returns
// an error that should stop the pipeline; fetch failures only produce an
// empty-notes fallback.
func (c *Client) Notes(ctx context.Context, topic string) string {
	results, err := c.search(ctx, topic)
	if err != nil {
		slog.Warn("research unavailable", slog.String("error", err.Error()))
	}
	return toMarkdown(topic, results)
}

func (c *Client) search(ctx context.Context, topic string) ([]searchResult, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, nil
	}
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	count := c.Count
	if count <= 0 {
		count = 10
	}

	q := url.Values{}
	q.Set("q", topic+" news")
	q.Set("count", fmt.Sprint(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonResearch)
	}
	req.Header.Set("X-Subscription-Token", c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonResearch)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errorsx.Wrap(fmt.Errorf("brave search: %s", resp.Status), errorsx.ReasonResearch)
	}

	var parsed searchResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonResearch)
	}
	return parsed.Web.Results, nil
}

func toMarkdown(topic string, results []searchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research: %s\n\n", topic)
	if len(results) == 0 {
		b.WriteString("No live research available. Use internal knowledge.\n")
		return b.String()
	}
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "No Title"
		}
		fmt.Fprintf(&b, "## %s\nDate: %s\nSource: %s\nSummary: %s\n\n",
			title, r.Age, r.URL, r.Description)
	}
	return b.String()
}
