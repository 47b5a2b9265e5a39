package feed

import (
	"time"
)

// Registry types

type Source struct {
	Name    string         `yaml:"name"`
	URL     string         `yaml:"url"`
	Enabled *bool          `yaml:"enabled"` // nil means enabled
	Filters []SourceFilter `yaml:"filters"`
}

type SourceFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Feed processing types

// RawEntry is one feed item as the feed supplied it. Summary may contain HTML.
type RawEntry struct {
	Title     string
	Summary   string
	Link      string
	Published string // verbatim, empty when the feed omits it
}

// UnknownPublished marks an article whose feed did not supply a publish date.
const UnknownPublished = "Unknown"

// FetchedAtLayout is fixed width so stored values sort lexicographically.
const FetchedAtLayout = "2006-01-02T15:04:05.000000Z"

type Article struct {
	Source    string `json:"source" bson:"source"`
	Title     string `json:"title" bson:"title"`
	Summary   string `json:"summary" bson:"summary"`
	Link      string `json:"link" bson:"link"`
	Published string `json:"published" bson:"published"`
	FetchedAt string `json:"fetched_at" bson:"fetched_at"`
}

func FormatFetchedAt(t time.Time) string {
	return t.UTC().Format(FetchedAtLayout)
}
