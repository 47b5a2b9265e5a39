package api

import (
	"context"

	"github.com/pulseai/pulse/app/collector"
	"github.com/pulseai/pulse/app/feed"
	"github.com/pulseai/pulse/app/store"
)

type CollectorInterface interface {
	Collect(ctx context.Context, n int) *collector.Result
	Stats() map[string]interface{}
}

type ArticleStoreInterface interface {
	Available() bool
	ListArticles(ctx context.Context, limit int) (*store.ArticleList, error)
}

type RegistryInterface interface {
	All() []feed.Source
}

var _ CollectorInterface = (*collector.Collector)(nil)
var _ ArticleStoreInterface = (*store.Monitor)(nil)
var _ RegistryInterface = (*feed.Registry)(nil)

type GeneratorInterface interface {
	Run(channel feed.Channel, articles []feed.Article) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type HandlerOptions struct {
	DefaultCount int
	MaxCount     int
	Version      string
	BaseURL      string
}

type Handler struct {
	collector CollectorInterface
	articles  ArticleStoreInterface
	registry  RegistryInterface
	generator GeneratorInterface
	opts      HandlerOptions
}
