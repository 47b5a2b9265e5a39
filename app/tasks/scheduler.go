package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	taskQueueSize = 16
	taskTimeout   = 5 * time.Minute
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs queued tasks on a single worker and, when interval is
// positive, enqueues a collection on every tick. One worker keeps periodic
// runs from overlapping.
type Scheduler struct {
	collector CollectorInterface
	interval  time.Duration
	count     int
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(collector CollectorInterface, interval time.Duration, count int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		collector: collector,
		interval:  interval,
		count:     count,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker(0)

	if s.interval <= 0 {
		slog.Debug("Periodic collection disabled")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueCollect()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueCollect() {
	task := NewCollectTask(s.collector, s.count)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue CollectTask", "count", s.count, "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
	}
}
