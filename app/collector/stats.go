package collector

import (
	"sync"
	"time"
)

// Stats accumulates counters across runs for the health endpoint.
type Stats struct {
	mu sync.RWMutex

	Runs               int64
	ArticlesAccepted   int64
	DuplicatesRejected int64
	EntriesFiltered    int64
	MalformedEntries   int64
	SourceFailures     int64
	PersistedInserted  int64
	PersistSkipped     int64

	LastRunTime      time.Time
	LastRunDuration  time.Duration
	LastRunAccepted  int
	LastRunAttempted int
}

type runCounters struct {
	duplicates int
	filtered   int
	malformed  int
	failures   int
}

func (s *Stats) recordRun(started time.Time, state *runState, counters runCounters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Runs++
	s.ArticlesAccepted += int64(state.accepted)
	s.DuplicatesRejected += int64(counters.duplicates)
	s.EntriesFiltered += int64(counters.filtered)
	s.MalformedEntries += int64(counters.malformed)
	s.SourceFailures += int64(counters.failures)

	s.LastRunTime = started
	s.LastRunDuration = time.Since(started)
	s.LastRunAccepted = state.accepted
	s.LastRunAttempted = len(state.attempted)
}

func (s *Stats) recordPersist(inserted int, skipped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if skipped {
		s.PersistSkipped++
		return
	}
	s.PersistedInserted += int64(inserted)
}

func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs":                 s.Runs,
		"articles_accepted":    s.ArticlesAccepted,
		"duplicates_rejected":  s.DuplicatesRejected,
		"entries_filtered":     s.EntriesFiltered,
		"malformed_entries":    s.MalformedEntries,
		"source_failures":      s.SourceFailures,
		"persisted_inserted":   s.PersistedInserted,
		"persist_skipped":      s.PersistSkipped,
		"last_run_accepted":    s.LastRunAccepted,
		"last_run_attempted":   s.LastRunAttempted,
		"last_run_duration_ms": s.LastRunDuration.Milliseconds(),
	}
	if !s.LastRunTime.IsZero() {
		stats["last_run_time"] = s.LastRunTime.Format(time.RFC3339)
	}
	return stats
}
