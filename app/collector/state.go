package collector

import (
	"math"

	"github.com/pulseai/pulse/app/feed"
)

const (
	DefaultSlackFactor = 2
	DefaultSpread      = 5
)

// Params tune a collection run.
type Params struct {
	// SlackFactor multiplies the per-source quota to give the hard cap on
	// what one source may contribute.
	SlackFactor int
	// Spread is the number of sources the target is divided across.
	Spread int
	// Concurrency is how many source fetches may be in flight at once.
	Concurrency int
}

func (p Params) withDefaults() Params {
	if p.SlackFactor <= 0 {
		p.SlackFactor = DefaultSlackFactor
	}
	if p.Spread <= 0 {
		p.Spread = DefaultSpread
	}
	if p.Concurrency <= 0 {
		p.Concurrency = 1
	}
	return p
}

// perSourceQuota is the even share of target across min(spread, sourceCount)
// sources, floor-divided, never below one.
func perSourceQuota(target, sourceCount, spread int) int {
	divisor := min(spread, sourceCount)
	if divisor <= 0 {
		return 1
	}
	return max(1, target/divisor)
}

// runState is the Scanning state of one collection run. It is mutated only by
// the aggregator loop in Collector.scan.
type runState struct {
	target      int
	sourceCount int
	quota       int
	sourceCap   int

	accepted  int
	attempted []string
	index     *DuplicateIndex
	articles  []feed.Article
}

func newRunState(target, sourceCount int, params Params) *runState {
	quota := perSourceQuota(target, sourceCount, params.Spread)
	return &runState{
		target:      target,
		sourceCount: sourceCount,
		quota:       quota,
		sourceCap:   sourceCap(quota, params.SlackFactor),
		index:       NewDuplicateIndex(),
		// Grown on acceptance; target is caller controlled and unbounded.
		articles: []feed.Article{},
	}
}

// sourceCap is slack * quota, saturating at math.MaxInt.
func sourceCap(quota, slack int) int {
	if quota > math.MaxInt/slack {
		return math.MaxInt
	}
	return quota * slack
}

func (s *runState) markAttempted(source string) {
	s.attempted = append(s.attempted, source)
}

// offer accepts article unless its title is already indexed.
func (s *runState) offer(article feed.Article) bool {
	if !s.index.Add(article.Title) {
		return false
	}
	s.articles = append(s.articles, article)
	s.accepted++
	return true
}

// stopSource decides whether the current source, having contributed local
// articles so far, should yield.
func stopSource(s runState, local int) bool {
	return s.accepted >= s.target || local >= s.sourceCap
}

// stopRun decides whether scanning moves to Done. Reaching the target ends
// the run whether or not the spread has been attempted yet.
func stopRun(s runState) bool {
	return s.accepted >= s.target || len(s.attempted) >= s.sourceCount
}
