package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pulseai/pulse/app/feed"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database file at path and brings
// its schema up to date.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("Database migrations completed", "version", version, "dirty", dirty, "path", path)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) UpsertArticles(ctx context.Context, articles []feed.Article) (UpsertResult, error) {
	var result UpsertResult
	if len(articles) == 0 {
		return result, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (source, title, summary, link, published, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (title, source) DO NOTHING
	`)
	if err != nil {
		return result, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, article := range articles {
		res, err := stmt.ExecContext(ctx,
			article.Source, article.Title, article.Summary,
			article.Link, article.Published, article.FetchedAt)
		if err != nil {
			result.Failed++
			slog.Warn("Failed to store article", "source", article.Source, "title", article.Title, "error", err)
			continue
		}

		affected, err := res.RowsAffected()
		if err != nil {
			result.Failed++
			continue
		}
		if affected > 0 {
			result.Inserted++
		} else {
			result.Existing++
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to commit articles: %w", err)
	}

	return result, nil
}

func (s *SQLiteStore) ListArticles(ctx context.Context, limit int) (*ArticleList, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, title, summary, link, published, fetched_at
		FROM articles
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var records []feed.Article
	for rows.Next() {
		var article feed.Article
		if err := rows.Scan(&article.Source, &article.Title, &article.Summary,
			&article.Link, &article.Published, &article.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		records = append(records, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return SelectListing(records, limit), nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}
