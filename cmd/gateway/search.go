package main

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"news-insight/internal/app"
	"news-insight/internal/httputil"
	"news-insight/internal/insights"
	"news-insight/internal/newsapi"
	"news-insight/internal/sentiment"
)

const articlesPerSide = 5

// searchSentiment drops the backend's raw output; tone and evidence are
// already top-level fields of the result.
type searchSentiment struct {
	sentiment.Result
	Raw any `json:"raw,omitempty"`
}

type searchItem struct {
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	PublishedAt string            `json:"published_at"`
	Summary     string            `json:"summary"`
	Sentiment   searchSentiment   `json:"sentiment"`
	Insights    insights.Insights `json:"insights"`
	Content     string            `json:"content"`
	Description string            `json:"description"`
}

type searchResponse struct {
	Query string       `json:"query"`
	Left  []searchItem `json:"left"`
	Right []searchItem `json:"right"`
	Error *string      `json:"error"`
}

func searchHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		resp := searchResponse{Query: query, Left: []searchItem{}, Right: []searchItem{}}
		if query == "" || deps.News == nil {
			httputil.WriteJSON(w, http.StatusOK, resp)
			return
		}

		var leftErr, rightErr error
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			resp.Left, leftErr = fetchSide(ctx, deps, query, newsapi.Left)
			return nil
		})
		g.Go(func() error {
			resp.Right, rightErr = fetchSide(ctx, deps, query, newsapi.Right)
			return nil
		})
		_ = g.Wait()

		for _, err := range []error{leftErr, rightErr} {
			if err != nil {
				deps.Log.Warn("news search failed", "query", query, "err", err)
				msg := err.Error()
				resp.Error = &msg
				break
			}
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

// fetchSide returns the processed articles for one bucket. On error the
// slice is empty, never nil.
func fetchSide(ctx context.Context, deps app.Deps, query string, side newsapi.Side) ([]searchItem, error) {
	raw, err := deps.News.Search(ctx, query, side, articlesPerSide)
	if err != nil {
		return []searchItem{}, err
	}

	items := make([]searchItem, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sentimentConcurrency)
	for i, a := range raw {
		g.Go(func() error {
			items[i] = processSearchArticle(gctx, deps, a)
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

func processSearchArticle(ctx context.Context, deps app.Deps, a newsapi.Article) searchItem {
	text := a.Text()
	s := classify(ctx, deps, text)
	if s.Evidence == nil {
		s.Evidence = []string{}
	}
	title := a.Title
	if title == "" {
		title = "Untitled"
	}
	url := a.URL
	if url == "" {
		url = "#"
	}
	return searchItem{
		Title:       title,
		URL:         url,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
		Summary:     insights.Summary(text, summarySentences),
		Sentiment:   searchSentiment{Result: s},
		Insights:    insights.Analyze(text),
		Content:     text,
		Description: a.Description,
	}
}
