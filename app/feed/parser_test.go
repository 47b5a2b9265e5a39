package feed

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description><![CDATA[<p>Test <b>Item</b> 1 Description</p>]]></description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
      <guid>item-2</guid>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	entry1 := entries[0]
	if entry1.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", entry1.Title)
	}
	if entry1.Link != "https://example.com/item1" {
		t.Errorf("Expected link 'https://example.com/item1', got: %s", entry1.Link)
	}
	if entry1.Summary != "<p>Test <b>Item</b> 1 Description</p>" {
		t.Errorf("Expected raw HTML summary, got: %s", entry1.Summary)
	}
	if entry1.Published != "Mon, 03 Jul 2023 10:00:00 GMT" {
		t.Errorf("Expected published string to be kept verbatim, got: %s", entry1.Published)
	}

	if entries[1].Published != "" {
		t.Errorf("Expected empty published for item without pubDate, got: %s", entries[1].Published)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <id>urn:uuid:entry-1</id>
    <published>2023-07-03T10:00:00Z</published>
    <updated>2023-07-03T10:00:00Z</updated>
    <content type="html">Test content</content>
  </entry>
</feed>`

	parser := NewParser()
	entries, err := parser.Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}

	entry := entries[0]
	if entry.Title != "Test Entry" {
		t.Errorf("Expected title 'Test Entry', got: %s", entry.Title)
	}
	if entry.Link != "https://example.com/entry1" {
		t.Errorf("Expected link 'https://example.com/entry1', got: %s", entry.Link)
	}
	if entry.Summary != "Test content" {
		t.Errorf("Expected summary to fall back to content, got: %s", entry.Summary)
	}
	if entry.Published != "2023-07-03T10:00:00Z" {
		t.Errorf("Expected published '2023-07-03T10:00:00Z', got: %s", entry.Published)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()
	_, err := parser.Run([]byte("invalid xml"))

	if err == nil {
		t.Error("Expected error for invalid XML")
	}
}

func TestParseEmptyChannel(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Empty</title>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected 0 entries, got: %d", len(entries))
	}
}
