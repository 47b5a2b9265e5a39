package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type CollectTask struct {
	Task
	Count     int
	collector CollectorInterface
}

func NewCollectTask(collector CollectorInterface, count int) *CollectTask {
	return &CollectTask{
		Task:      NewTask(TaskTypeCollect),
		Count:     count,
		collector: collector,
	}
}

func (t *CollectTask) Execute(ctx context.Context) error {
	slog.Debug("Starting collection", "id", t.GetID(), "count", t.Count)

	result := t.collector.Collect(ctx, t.Count)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("collection interrupted after %d articles: %w", result.Total, err)
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"id", t.GetID(),
		"articles", result.Total,
		"attempted", len(result.Attempted),
		"duration", t.GetDuration())

	return nil
}
