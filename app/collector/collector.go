package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pulseai/pulse/app/feed"
	"github.com/pulseai/pulse/app/store"
)

const persistTimeout = 30 * time.Second

type SourceLister interface {
	Sources() []feed.Source
}

type Fetcher interface {
	Fetch(ctx context.Context, source feed.Source) ([]feed.RawEntry, error)
}

// Persister is the store capability the collector needs. A nil Persister
// disables persistence.
type Persister interface {
	Available() bool
	UpsertArticles(ctx context.Context, articles []feed.Article) (store.UpsertResult, error)
}

var _ Persister = (*store.Monitor)(nil)
var _ Fetcher = (*feed.Client)(nil)

type Result struct {
	Total    int            `json:"total"`
	Articles []feed.Article `json:"articles"`
	Message  string         `json:"message"`

	Attempted []string            `json:"-"`
	Persisted *store.UpsertResult `json:"-"`
}

type Collector struct {
	registry  SourceLister
	fetcher   Fetcher
	persister Persister
	filterer  *feed.Filterer
	params    Params
	stats     *Stats

	shuffle func([]feed.Source)
	now     func() time.Time
}

func NewCollector(registry SourceLister, fetcher Fetcher, persister Persister, params Params) *Collector {
	return &Collector{
		registry:  registry,
		fetcher:   fetcher,
		persister: persister,
		filterer:  feed.NewFilterer(),
		params:    params.withDefaults(),
		stats:     &Stats{},
		shuffle: func(sources []feed.Source) {
			rand.Shuffle(len(sources), func(i, j int) {
				sources[i], sources[j] = sources[j], sources[i]
			})
		},
		now: time.Now,
	}
}

func (c *Collector) Stats() map[string]interface{} {
	return c.stats.GetStats()
}

// Collect gathers up to n unique articles across the registry and persists
// them when a store is available. It always returns a well-formed result.
func (c *Collector) Collect(ctx context.Context, n int) *Result {
	if n <= 0 {
		return emptyResult("No articles requested")
	}

	sources := c.registry.Sources()
	if len(sources) == 0 {
		return emptyResult("No sources configured")
	}

	started := c.now()
	c.shuffle(sources)

	state := newRunState(n, len(sources), c.params)
	counters := c.scan(ctx, sources, state)
	c.stats.recordRun(started, state, counters)

	slog.Info("Collection completed",
		"requested", n,
		"accepted", state.accepted,
		"attempted", len(state.attempted),
		"sources", len(sources),
		"quota", state.quota,
		"source_cap", state.sourceCap,
		"duplicates", counters.duplicates,
		"failures", counters.failures,
		"duration", time.Since(started))

	result := assemble(state)
	result.Persisted = c.persist(ctx, state.articles)
	if result.Persisted != nil && result.Persisted.Inserted > 0 {
		result.Message = fmt.Sprintf("%s (%d new stored)", result.Message, result.Persisted.Inserted)
	}

	return result
}

type fetchOutcome struct {
	entries []feed.RawEntry
	err     error
}

// scan drives the Scanning state to Done. Up to params.Concurrency sources are
// fetched ahead, but outcomes are consumed strictly in permutation order by
// this goroutine alone, so quota and dedup decisions see consistent state.
func (c *Collector) scan(ctx context.Context, sources []feed.Source, state *runState) runCounters {
	var counters runCounters

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make([]chan fetchOutcome, len(sources))
	next := 0
	launch := func() {
		i := next
		next++
		ch := make(chan fetchOutcome, 1)
		pending[i] = ch
		go func() {
			entries, err := c.fetcher.Fetch(runCtx, sources[i])
			ch <- fetchOutcome{entries: entries, err: err}
		}()
	}

	for i, source := range sources {
		if stopRun(*state) {
			break
		}
		if err := ctx.Err(); err != nil {
			slog.Warn("Collection cancelled", "attempted", len(state.attempted), "accepted", state.accepted, "error", err)
			break
		}

		for next < len(sources) && next <= i+c.params.Concurrency-1 {
			launch()
		}

		var outcome fetchOutcome
		select {
		case outcome = <-pending[i]:
		case <-ctx.Done():
			slog.Warn("Collection cancelled", "attempted", len(state.attempted), "accepted", state.accepted, "error", ctx.Err())
			return counters
		}

		state.markAttempted(source.Name)

		if outcome.err != nil {
			counters.failures++
			slog.Warn("Skipping source", "source", source.Name, "error", outcome.err)
			continue
		}

		c.consume(source, outcome.entries, state, &counters)
	}

	return counters
}

func (c *Collector) consume(source feed.Source, entries []feed.RawEntry, state *runState, counters *runCounters) {
	local := 0
	for _, entry := range entries {
		if stopSource(*state, local) {
			break
		}

		article, err := feed.NewArticle(source.Name, entry, c.now())
		if err != nil {
			counters.malformed++
			slog.Debug("Skipping entry", "source", source.Name, "link", entry.Link, "error", err)
			continue
		}

		if excluded, reason := c.filterer.Run(article, source.Filters); excluded {
			counters.filtered++
			slog.Debug("Entry filtered", "source", source.Name, "title", article.Title, "reason", reason)
			continue
		}

		if !state.offer(article) {
			counters.duplicates++
			continue
		}
		local++
	}

	slog.Debug("Source consumed", "source", source.Name, "entries", len(entries), "accepted", local)
}

// persist writes the closed batch. It never fails the run; a nil result means
// nothing was written.
func (c *Collector) persist(ctx context.Context, articles []feed.Article) *store.UpsertResult {
	if len(articles) == 0 || c.persister == nil {
		return nil
	}

	if !c.persister.Available() {
		c.stats.recordPersist(0, true)
		slog.Warn("Store unavailable, skipping persistence", "articles", len(articles))
		return nil
	}

	// The batch is stored even if the caller has gone away.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	result, err := c.persister.UpsertArticles(persistCtx, articles)
	if err != nil {
		c.stats.recordPersist(0, true)
		if errors.Is(err, store.ErrUnavailable) {
			slog.Warn("Store unavailable, skipping persistence", "articles", len(articles), "error", err)
		} else {
			slog.Error("Failed to persist articles", "articles", len(articles), "error", err)
		}
		return nil
	}

	c.stats.recordPersist(result.Inserted, false)
	slog.Info("Articles persisted",
		"inserted", result.Inserted,
		"existing", result.Existing,
		"failed", result.Failed)

	return &result
}

func assemble(state *runState) *Result {
	attempted := make([]string, len(state.attempted))
	copy(attempted, state.attempted)

	return &Result{
		Total:     len(state.articles),
		Articles:  state.articles,
		Message:   fmt.Sprintf("Fetched %d articles from %d sources", len(state.articles), len(state.attempted)),
		Attempted: attempted,
	}
}

func emptyResult(message string) *Result {
	return &Result{
		Total:     0,
		Articles:  []feed.Article{},
		Message:   message,
		Attempted: []string{},
	}
}
