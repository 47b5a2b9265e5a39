package tasks

import (
	"context"

	"github.com/pulseai/pulse/app/collector"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background collection.
// Example usage:
//
//	scheduler := NewScheduler(c, 15*time.Minute, 20)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewCollectTask(c, 50))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type CollectorInterface interface {
	Collect(ctx context.Context, n int) *collector.Result
}

var _ CollectorInterface = (*collector.Collector)(nil)
