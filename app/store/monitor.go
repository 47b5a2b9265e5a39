package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pulseai/pulse/app/feed"
)

const defaultPingTimeout = 5 * time.Second

// Monitor owns the process-wide store. It tracks availability with periodic
// pings and refuses reads and writes while the backend is down. A Monitor
// with no backend is permanently unavailable.
type Monitor struct {
	backend   Store
	interval  time.Duration
	available atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMonitor(backend Store, interval time.Duration) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Monitor{
		backend:  backend,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
	m.available.Store(backend != nil)
	return m
}

func (m *Monitor) Start() {
	if m.backend == nil || m.interval <= 0 {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.Check(m.ctx)
			}
		}
	}()
}

// Check pings the backend and records the outcome.
func (m *Monitor) Check(ctx context.Context) bool {
	if m.backend == nil {
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	err := m.backend.Ping(pingCtx)
	up := err == nil

	if was := m.available.Swap(up); was != up {
		if up {
			slog.Info("Store available again")
		} else {
			slog.Warn("Store became unavailable", "error", err)
		}
	}

	return up
}

func (m *Monitor) Available() bool {
	return m.available.Load()
}

func (m *Monitor) UpsertArticles(ctx context.Context, articles []feed.Article) (UpsertResult, error) {
	if !m.Available() {
		return UpsertResult{}, ErrUnavailable
	}

	result, err := m.backend.UpsertArticles(ctx, articles)
	if err != nil {
		return result, fmt.Errorf("failed to upsert articles: %w", err)
	}
	return result, nil
}

func (m *Monitor) ListArticles(ctx context.Context, limit int) (*ArticleList, error) {
	if !m.Available() {
		return nil, ErrUnavailable
	}

	list, err := m.backend.ListArticles(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return list, nil
}

// Close stops health checks and releases the backend.
func (m *Monitor) Close(ctx context.Context) error {
	m.cancel()
	m.wg.Wait()
	m.available.Store(false)

	if m.backend == nil {
		return nil
	}
	return m.backend.Close(ctx)
}
