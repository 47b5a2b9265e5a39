package feed

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) ([]RawEntry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]RawEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item))
	}

	return entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) RawEntry {
	// Atom entries without a summary carry the text in content only.
	return RawEntry{
		Title:     item.Title,
		Summary:   cmp.Or(item.Description, item.Content),
		Link:      p.firstLink(item),
		Published: item.Published,
	}
}

func (p *Parser) firstLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	for _, link := range item.Links {
		if link != "" {
			return link
		}
	}
	return ""
}
