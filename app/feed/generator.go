package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/araddon/dateparse"
)

// Channel describes the RSS document wrapping a list of stored articles.
type Channel struct {
	Title       string
	Link        string
	Description string
	SelfURL     string
	Generator   string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders articles as an RSS 2.0 document in the given order.
func (g *Generator) Run(channel Channel, articles []Article) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, channel.Title), 4)

	if channel.SelfURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfURL)))
	}

	lastBuildDate := time.Now().In(time.Local)
	if len(articles) > 0 {
		if published, ok := g.pubDate(articles[0]); ok {
			lastBuildDate = published
		}
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", channel.Generator, 4)

	for _, article := range articles {
		g.writeItem(&buf, article)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, article Article) {
	buf.WriteString("    <item>\n")

	if article.Link != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(article.Link)))
		xml.EscapeText(buf, []byte(article.Link))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", article.Title, 6)
	g.writeElement(buf, "link", article.Link, 6)
	g.writeElement(buf, "description", cmp.Or(article.Summary, "No description available"), 6)

	if published, ok := g.pubDate(article); ok {
		g.writeElement(buf, "pubDate", published.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "category", article.Source, 6)

	buf.WriteString("    </item>\n")
}

// pubDate interprets the stored published value. Unknown or unparseable
// values yield no date.
func (g *Generator) pubDate(article Article) (time.Time, bool) {
	if article.Published == "" || article.Published == UnknownPublished {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(article.Published, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
