package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func testChannel() Channel {
	return Channel{
		Title:       "Pulse",
		Link:        "https://news.example.com",
		Description: "Latest stored articles",
		SelfURL:     "https://news.example.com/articles.rss",
		Generator:   "Pulse/test",
	}
}

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator()

	articles := []Article{
		{
			Source:    "The Hindu",
			Title:     "Monsoon arrives",
			Summary:   "Rains reach Kerala",
			Link:      "https://example.com/item1",
			Published: "Mon, 03 Jul 2023 15:30:00 +0530",
		},
		{
			Source:    "Mint",
			Title:     "Markets rally",
			Link:      "https://example.com/item2",
			Published: UnknownPublished,
		},
	}

	rss, err := generator.Run(testChannel(), articles)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should contain XML declaration")
	}

	if !strings.Contains(rss, `<rss version="2.0"`) {
		t.Error("RSS should contain RSS 2.0 declaration")
	}

	if !strings.Contains(rss, "<title>Pulse</title>") {
		t.Error("RSS should contain channel title")
	}

	if !strings.Contains(rss, `<atom:link href="https://news.example.com/articles.rss" rel="self" type="application/rss+xml" />`) {
		t.Error("RSS should contain atom:link self reference")
	}

	if !strings.Contains(rss, "<generator>Pulse/test</generator>") {
		t.Error("RSS should contain generator")
	}

	if !strings.Contains(rss, `<guid isPermaLink="true">https://example.com/item1</guid>`) {
		t.Error("RSS should use the link as permalink GUID")
	}

	if !strings.Contains(rss, "<description>Rains reach Kerala</description>") {
		t.Error("RSS should contain item summary")
	}

	if !strings.Contains(rss, "<pubDate>Mon, 03 Jul 2023 10:00:00 +0000</pubDate>") {
		t.Error("RSS should contain item pubDate normalized to UTC")
	}

	if !strings.Contains(rss, "<category>The Hindu</category>") {
		t.Error("RSS should contain source as category")
	}

	if strings.Count(rss, "<pubDate>") != 1 {
		t.Error("Unknown published date should not produce a pubDate")
	}

	if !strings.Contains(rss, "<description>No description available</description>") {
		t.Error("Empty summary should fall back to placeholder description")
	}

	if !strings.Contains(rss, "<lastBuildDate>Mon, 03 Jul 2023 10:00:00 +0000</lastBuildDate>") {
		t.Error("lastBuildDate should come from the first article")
	}
}

func TestGenerateWithSpecialCharacters(t *testing.T) {
	generator := NewGenerator()

	articles := []Article{
		{Source: "A & B", Title: `Tom & Jerry <"quoted">`, Link: "https://example.com/?a=1&b=2"},
	}

	rss, err := generator.Run(testChannel(), articles)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, "<title>Tom &amp; Jerry &lt;&#34;quoted&#34;&gt;</title>") {
		t.Errorf("Title should be XML escaped, got:\n%s", rss)
	}

	var doc struct {
		Channel struct {
			Items []struct {
				Title string `xml:"title"`
				Link  string `xml:"link"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal([]byte(rss), &doc); err != nil {
		t.Fatalf("Generated RSS should be well-formed XML: %v", err)
	}
	if len(doc.Channel.Items) != 1 || doc.Channel.Items[0].Link != "https://example.com/?a=1&b=2" {
		t.Errorf("Unexpected parsed items: %+v", doc.Channel.Items)
	}
}

func TestGenerateWithEmptyItems(t *testing.T) {
	generator := NewGenerator()

	before := time.Now().Add(-time.Minute)
	rss, err := generator.Run(Channel{Title: "Empty"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(rss, "<item>") {
		t.Error("RSS should not contain items")
	}
	if strings.Contains(rss, "<atom:link") {
		t.Error("RSS should omit self link when not configured")
	}
	if !strings.Contains(rss, "<description>Empty</description>") {
		t.Error("Description should fall back to title")
	}

	start := strings.Index(rss, "<lastBuildDate>") + len("<lastBuildDate>")
	end := strings.Index(rss, "</lastBuildDate>")
	built, err := time.Parse(time.RFC1123Z, rss[start:end])
	if err != nil {
		t.Fatalf("lastBuildDate should be RFC1123Z: %v", err)
	}
	if built.Before(before) {
		t.Errorf("lastBuildDate should default to now, got %s", built)
	}
}

func TestIsURLMethod(t *testing.T) {
	generator := NewGenerator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com", true},
		{"http://example.com", true},
		{"ftp://example.com", false},
		{"item-1", false},
		{"", false},
	}

	for _, tt := range tests {
		if result := generator.isURL(tt.input); result != tt.expected {
			t.Errorf("isURL(%q) = %v, expected %v", tt.input, result, tt.expected)
		}
	}
}
