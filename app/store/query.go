package store

import (
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"github.com/pulseai/pulse/app/feed"
)

// SelectListing applies the read-path rules to records given in insertion
// order. Records with a usable published value are sorted newest first; when
// there are none, every record with any published value is returned sorted by
// the raw string. A limit of zero or less means no limit.
func SelectListing(records []feed.Article, limit int) *ArticleList {
	selected := make([]feed.Article, 0, len(records))
	for _, record := range records {
		if record.Published != "" && record.Published != feed.UnknownPublished {
			selected = append(selected, record)
		}
	}

	if len(selected) > 0 {
		SortByPublished(selected)
	} else {
		for _, record := range records {
			if record.Published != "" {
				selected = append(selected, record)
			}
		}
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Published > selected[j].Published
		})
	}

	total := len(selected)
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}

	return &ArticleList{
		Total:    total,
		Count:    len(selected),
		Limit:    max(limit, 0),
		Articles: selected,
	}
}

// SortByPublished orders articles newest first. A published value that cannot
// be parsed is replaced by fetched_at; records with neither sort last. Ties
// keep their input order.
func SortByPublished(articles []feed.Article) {
	type keyed struct {
		article feed.Article
		at      time.Time
	}

	items := make([]keyed, len(articles))
	for i, article := range articles {
		items[i] = keyed{article: article, at: sortKey(article)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.After(items[j].at)
	})

	for i, item := range items {
		articles[i] = item.article
	}
}

func sortKey(article feed.Article) time.Time {
	if t, err := dateparse.ParseIn(article.Published, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(feed.FetchedAtLayout, article.FetchedAt); err == nil {
		return t
	}
	if t, err := dateparse.ParseIn(article.FetchedAt, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}
