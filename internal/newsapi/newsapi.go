// Package newsapi searches newsapi.org for recent coverage from outlets
// grouped by political lean.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"news-insight/internal/retry"
)

// Side is a political-lean bucket of sources.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

var ErrMissingAPIKey = errors.New("NEWS_API_KEY is not set")

const (
	defaultPageSize = 5
	maxAttempts     = 3
)

// Article is a search hit normalised from the NewsAPI payload.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// Text returns the best available body: content, then description, then title.
func (a Article) Text() string {
	for _, s := range []string{a.Content, a.Description, a.Title} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

type Config struct {
	APIKey       string
	BaseURL      string
	LeftSources  []string
	RightSources []string
	HTTPClient   *http.Client
	// RetryBase is the first backoff delay after a 429 or 5xx response.
	RetryBase time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.RetryBase == 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: hc, log: log}
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

type apiResponse struct {
	Status   string       `json:"status"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

// Search returns up to limit recent articles matching query from the
// sources configured for side.
func (c *Client) Search(ctx context.Context, query string, side Side, limit int) ([]Article, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	sources := c.cfg.LeftSources
	if side == Right {
		sources = c.cfg.RightSources
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(limit))
	if len(sources) > 0 {
		params.Set("sources", strings.Join(sources, ","))
	}
	endpoint := c.cfg.BaseURL + "/everything?" + params.Encode()

	var resp apiResponse
	if err := c.getWithRetry(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("news search (%s): %w", side, err)
	}

	out := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "[Removed]" {
			continue
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		out = append(out, Article{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Source:      source,
			PublishedAt: a.PublishedAt,
		})
	}
	return out, nil
}

func (c *Client) getWithRetry(ctx context.Context, endpoint string, dst *apiResponse) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		retryable, err := c.get(ctx, endpoint, dst)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts-1 {
			break
		}
		c.log.Warn("news search failed, retrying", "attempt", attempt+1, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, c.cfg.RetryBase)):
		}
	}
	return lastErr
}

func (c *Client) get(ctx context.Context, endpoint string, dst *apiResponse) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return true, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || dst.Status == "error" {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		msg := dst.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return retryable, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return false, nil
}
