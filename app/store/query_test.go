package store

import (
	"testing"

	"github.com/pulseai/pulse/app/feed"
)

func titles(articles []feed.Article) []string {
	result := make([]string, len(articles))
	for i, article := range articles {
		result[i] = article.Title
	}
	return result
}

func assertTitles(t *testing.T, articles []feed.Article, expected ...string) {
	t.Helper()

	got := titles(articles)
	if len(got) != len(expected) {
		t.Fatalf("Expected titles %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Expected titles %v, got %v", expected, got)
		}
	}
}

func TestSelectListingSortsByPublished(t *testing.T) {
	records := []feed.Article{
		{Title: "A", Published: "Fri, 01 Mar 2024 08:30:00 +0530", FetchedAt: "2024-03-01T04:00:00.000000Z"},
		{Title: "B", Published: "2024-03-02T10:00:00Z", FetchedAt: "2024-03-02T11:00:00.000000Z"},
		{Title: "C", Published: feed.UnknownPublished, FetchedAt: "2024-03-09T00:00:00.000000Z"},
		{Title: "D", Published: "sometime soon", FetchedAt: "2024-03-05T00:00:00.000000Z"},
	}

	list := SelectListing(records, 0)

	assertTitles(t, list.Articles, "D", "B", "A")
	if list.Total != 3 || list.Count != 3 || list.Limit != 0 {
		t.Errorf("Unexpected counts: total=%d count=%d limit=%d", list.Total, list.Count, list.Limit)
	}
}

func TestSelectListingLimit(t *testing.T) {
	records := []feed.Article{
		{Title: "Old", Published: "2024-01-01T00:00:00Z"},
		{Title: "New", Published: "2024-06-01T00:00:00Z"},
		{Title: "Mid", Published: "2024-03-01T00:00:00Z"},
	}

	list := SelectListing(records, 2)

	assertTitles(t, list.Articles, "New", "Mid")
	if list.Total != 3 || list.Count != 2 || list.Limit != 2 {
		t.Errorf("Unexpected counts: total=%d count=%d limit=%d", list.Total, list.Count, list.Limit)
	}
}

func TestSelectListingFallback(t *testing.T) {
	records := []feed.Article{
		{Title: "First", Published: feed.UnknownPublished},
		{Title: "Blank", Published: ""},
		{Title: "Second", Published: feed.UnknownPublished},
	}

	list := SelectListing(records, 0)

	assertTitles(t, list.Articles, "First", "Second")
	if list.Total != 2 {
		t.Errorf("Expected total 2, got %d", list.Total)
	}
}

func TestSelectListingEmpty(t *testing.T) {
	list := SelectListing(nil, 10)

	if list.Articles == nil || list.Total != 0 || list.Count != 0 {
		t.Errorf("Expected empty non-nil listing, got %+v", list)
	}
}

func TestSortByPublishedStable(t *testing.T) {
	articles := []feed.Article{
		{Title: "X", Published: "2024-03-01T00:00:00Z"},
		{Title: "Y", Published: "2024-03-01T00:00:00Z"},
		{Title: "Z", Published: "2024-03-02T00:00:00Z"},
	}

	SortByPublished(articles)

	assertTitles(t, articles, "Z", "X", "Y")
}
