package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pulseai/pulse/app/feed"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverNone   = "none"
)

var ErrUnavailable = errors.New("store not available")

// UpsertResult counts the outcome of one batch write.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Existing int `json:"existing"`
	Failed   int `json:"failed"`
}

type ArticleList struct {
	Total    int            `json:"total"`
	Count    int            `json:"count"`
	Limit    int            `json:"limit"`
	Articles []feed.Article `json:"articles"`
}

// Store persists articles keyed by (title, source). Writing a record that
// already exists leaves it untouched.
type Store interface {
	UpsertArticles(ctx context.Context, articles []feed.Article) (UpsertResult, error)
	ListArticles(ctx context.Context, limit int) (*ArticleList, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type Options struct {
	Driver          string
	Path            string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open connects the configured backend. DriverNone yields a nil Store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite:
		s, err := OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMongo:
		s, err := OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", opts.Driver)
	}
}
