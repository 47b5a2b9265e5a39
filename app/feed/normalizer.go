package feed

import (
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
)

// StripMarkup returns the readable text of an HTML fragment. Entities are
// decoded and runs of whitespace collapse to a single space. Malformed markup
// yields best-effort text rather than an error.
func StripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(html.UnescapeString(fragment))
	}

	doc.Find("script, style, noscript").Remove()
	return collapseSpace(doc.Text())
}

// NormalizeTitle is the duplicate comparison key for a title. It is never
// stored in place of the title.
func NormalizeTitle(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// NewArticle builds an Article from a raw entry collected at fetchedAt.
func NewArticle(source string, entry RawEntry, fetchedAt time.Time) (Article, error) {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" || link == "" {
		return Article{}, ErrMalformedEntry
	}

	published := strings.TrimSpace(entry.Published)
	if published == "" {
		published = UnknownPublished
	}

	return Article{
		Source:    source,
		Title:     title,
		Summary:   StripMarkup(entry.Summary),
		Link:      link,
		Published: published,
		FetchedAt: FormatFetchedAt(fetchedAt),
	}, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
