package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxFeedSize = 10 << 20

// Client fetches and parses one source. Every failure comes back as a
// *FetchError so the caller can skip the source and carry on.
type Client struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	timeout    time.Duration
}

func NewClient(httpClient *http.Client, parser *Parser, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (c *Client) Fetch(ctx context.Context, source Source) ([]RawEntry, error) {
	data, err := c.fetchFeed(ctx, source.URL)
	if err != nil {
		return nil, &FetchError{Source: source.Name, Err: err}
	}

	entries, err := c.parser.Run(data)
	if err != nil {
		return nil, &FetchError{Source: source.Name, Err: err}
	}

	return entries, nil
}

func (c *Client) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
