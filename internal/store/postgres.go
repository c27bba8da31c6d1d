package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock keeps concurrently starting services from racing on DDL.
	const lockID = 424242001

	var acquired bool
	if err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			url TEXT,
			source TEXT,
			published_at TIMESTAMPTZ,
			tags TEXT[] DEFAULT ARRAY[]::TEXT[]
		);`,
		`CREATE INDEX IF NOT EXISTS articles_published_at_idx ON articles (published_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const articleColumns = `id, title, content, COALESCE(url, ''), COALESCE(source, ''), COALESCE(published_at, 'epoch'::timestamptz), COALESCE(tags, ARRAY[]::TEXT[])`

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (Article, error) {
	var a Article
	var tags []string
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.URL, &a.Source, &a.PublishedAt, pq.Array(&tags)); err != nil {
		return Article{}, err
	}
	a.Tags = tags
	return a, nil
}

func (s *PostgresStore) ListArticles(ctx context.Context) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetArticle(ctx context.Context, id int) (Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Article{}, ErrArticleNotFound
		}
		return Article{}, fmt.Errorf("failed to get article %d: %w", id, err)
	}
	return a, nil
}

func (s *PostgresStore) SaveArticle(ctx context.Context, a Article) (Article, error) {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	if a.ID == 0 {
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO articles(title, content, url, source, published_at, tags)
			VALUES($1,$2,$3,$4,$5,$6) RETURNING id`,
			a.Title, a.Content, a.URL, a.Source, a.PublishedAt, pq.Array(tags)).Scan(&a.ID)
		if err != nil {
			return Article{}, fmt.Errorf("insert article: %w", err)
		}
		return a, nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles(id, title, content, url, source, published_at, tags)
		VALUES($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=excluded.title, content=excluded.content, url=excluded.url,
			source=excluded.source, published_at=excluded.published_at, tags=excluded.tags`,
		a.ID, a.Title, a.Content, a.URL, a.Source, a.PublishedAt, pq.Array(tags))
	if err != nil {
		return Article{}, fmt.Errorf("upsert article %d: %w", a.ID, err)
	}
	return a, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
