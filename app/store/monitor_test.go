package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pulseai/pulse/app/feed"
)

type fakeStore struct {
	mu       sync.Mutex
	pingErr  error
	pings    int
	written  []feed.Article
	closed   bool
}

func (f *fakeStore) UpsertArticles(ctx context.Context, articles []feed.Article) (UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.written = append(f.written, articles...)
	return UpsertResult{Inserted: len(articles)}, nil
}

func (f *fakeStore) ListArticles(ctx context.Context, limit int) (*ArticleList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return SelectListing(f.written, limit), nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pings++
	return f.pingErr
}

func (f *fakeStore) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *fakeStore) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeStore) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

func TestMonitorWithoutBackend(t *testing.T) {
	m := NewMonitor(nil, time.Second)
	m.Start()
	defer m.Close(context.Background())

	if m.Available() {
		t.Error("Expected monitor without backend to be unavailable")
	}
	if m.Check(context.Background()) {
		t.Error("Expected check without backend to fail")
	}
	if _, err := m.UpsertArticles(context.Background(), []feed.Article{{Title: "A"}}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
	if _, err := m.ListArticles(context.Background(), 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestMonitorTracksAvailability(t *testing.T) {
	backend := &fakeStore{}
	m := NewMonitor(backend, 0)
	ctx := context.Background()

	if !m.Available() {
		t.Fatal("Expected monitor to start available")
	}

	backend.setPingErr(errors.New("connection reset"))
	if m.Check(ctx) || m.Available() {
		t.Error("Expected monitor to become unavailable after failed ping")
	}
	if _, err := m.UpsertArticles(ctx, []feed.Article{{Title: "A"}}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable while down, got %v", err)
	}

	backend.setPingErr(nil)
	if !m.Check(ctx) || !m.Available() {
		t.Error("Expected monitor to recover after successful ping")
	}

	result, err := m.UpsertArticles(ctx, []feed.Article{{Title: "A", Published: "2024-01-01T00:00:00Z"}})
	if err != nil || result.Inserted != 1 {
		t.Errorf("Expected write to pass through, got %+v, %v", result, err)
	}

	list, err := m.ListArticles(ctx, 0)
	if err != nil || list.Count != 1 {
		t.Errorf("Expected one listed article, got %+v, %v", list, err)
	}
}

func TestMonitorPeriodicCheck(t *testing.T) {
	backend := &fakeStore{}
	m := NewMonitor(backend, 10*time.Millisecond)
	m.Start()

	deadline := time.Now().Add(2 * time.Second)
	for backend.pingCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if backend.pingCount() < 2 {
		t.Errorf("Expected periodic pings, got %d", backend.pingCount())
	}

	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("Expected no error on close, got: %v", err)
	}
	if !backend.closed {
		t.Error("Expected backend to be closed")
	}
	if m.Available() {
		t.Error("Expected closed monitor to be unavailable")
	}
}
