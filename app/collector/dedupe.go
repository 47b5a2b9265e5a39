package collector

import (
	"github.com/pulseai/pulse/app/feed"
)

// DuplicateIndex holds the normalized titles accepted during one run. It is
// owned by the run's aggregator and is not safe for concurrent use.
type DuplicateIndex struct {
	seen map[string]struct{}
}

func NewDuplicateIndex() *DuplicateIndex {
	return &DuplicateIndex{seen: make(map[string]struct{})}
}

// Add records title and reports whether it was new.
func (d *DuplicateIndex) Add(title string) bool {
	key := feed.NormalizeTitle(title)
	if _, exists := d.seen[key]; exists {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

func (d *DuplicateIndex) Contains(title string) bool {
	_, exists := d.seen[feed.NormalizeTitle(title)]
	return exists
}

func (d *DuplicateIndex) Len() int {
	return len(d.seen)
}
