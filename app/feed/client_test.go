package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Sample</title>
    <item>
      <title>First</title>
      <link>https://example.com/1</link>
      <description>One</description>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.com/2</link>
      <description>Two</description>
    </item>
  </channel>
</rss>`

func TestClientFetch(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	client := NewClient(server.Client(), NewParser(), "Pulse/test", time.Second)
	entries, err := client.Fetch(context.Background(), Source{Name: "Sample", URL: server.URL})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "First" || entries[1].Title != "Second" {
		t.Errorf("Expected feed order to be preserved, got %s, %s", entries[0].Title, entries[1].Title)
	}
	if userAgent != "Pulse/test" {
		t.Errorf("Expected User-Agent 'Pulse/test', got '%s'", userAgent)
	}
}

func TestClientFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.Client(), NewParser(), "Pulse/test", time.Second)
	_, err := client.Fetch(context.Background(), Source{Name: "Broken", URL: server.URL})

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *FetchError, got %v", err)
	}
	if fetchErr.Source != "Broken" {
		t.Errorf("Expected source 'Broken', got '%s'", fetchErr.Source)
	}
}

func TestClientFetchMalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not a feed</body></html>"))
	}))
	defer server.Close()

	client := NewClient(server.Client(), NewParser(), "Pulse/test", time.Second)
	if _, err := client.Fetch(context.Background(), Source{Name: "HTML", URL: server.URL}); err == nil {
		t.Error("Expected error for non-feed document")
	}
}

func TestClientFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.Client(), NewParser(), "Pulse/test", 50*time.Millisecond)

	start := time.Now()
	_, err := client.Fetch(context.Background(), Source{Name: "Slow", URL: server.URL})
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Fetch was not bounded by its timeout")
	}
}

func TestClientFetchUnreachable(t *testing.T) {
	client := NewClient(http.DefaultClient, NewParser(), "Pulse/test", time.Second)
	if _, err := client.Fetch(context.Background(), Source{Name: "Nowhere", URL: "http://127.0.0.1:1/feed"}); err == nil {
		t.Error("Expected error for unreachable host")
	}
}
