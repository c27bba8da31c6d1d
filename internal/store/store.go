package store

import (
	"context"
	"errors"
	"time"
)

var ErrArticleNotFound = errors.New("article not found")

// Article is a news story available for analysis.
type Article struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Tags        []string  `json:"tags,omitempty"`
}

// Store holds the articles served by the gateway. Analysis results are
// never persisted here.
type Store interface {
	ListArticles(ctx context.Context) ([]Article, error)
	GetArticle(ctx context.Context, id int) (Article, error)
	SaveArticle(ctx context.Context, a Article) (Article, error)
}
