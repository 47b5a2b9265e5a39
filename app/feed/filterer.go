package feed

import (
	"fmt"
	"strings"
)

var filterFields = map[string]bool{
	"title":   true,
	"summary": true,
	"link":    true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run reports whether the article is excluded by the source's filters and why.
func (f *Filterer) Run(article Article, filters []SourceFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(article, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(article Article, field string) string {
	switch field {
	case "title":
		return article.Title
	case "summary":
		return article.Summary
	case "link":
		return article.Link
	default:
		return ""
	}
}
