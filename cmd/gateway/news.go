package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"news-insight/internal/analysis"
	"news-insight/internal/app"
	"news-insight/internal/cache"
	"news-insight/internal/embeddings"
	"news-insight/internal/httputil"
	"news-insight/internal/insights"
	"news-insight/internal/sentiment"
	"news-insight/internal/store"
)

const (
	summarySentences = 2
	// sentimentConcurrency bounds parallel classifier calls per request.
	sentimentConcurrency = 4

	noReferenceText  = "Comparison unavailable; only one article configured."
	noReferenceError = "No reference article available."
)

type articleView struct {
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary"`
	Content     string            `json:"content"`
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	PublishedAt time.Time         `json:"published_at"`
	Sentiment   sentiment.Result  `json:"sentiment"`
	Insights    insights.Insights `json:"insights"`
}

type articleAnalysis struct {
	Article    articleView     `json:"article"`
	Rhetoric   analysis.Result `json:"rhetoric"`
	Comparison analysis.Result `json:"comparison"`
}

type createArticleRequest struct {
	Title       string    `json:"title" validate:"required"`
	Content     string    `json:"content" validate:"required"`
	URL         string    `json:"url" validate:"omitempty,url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Tags        []string  `json:"tags"`
}

func listNewsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		articles, err := deps.Store.ListArticles(ctx)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list articles", err, http.StatusInternalServerError)
			return
		}

		views := make([]articleView, len(articles))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(sentimentConcurrency)
		for i, a := range articles {
			g.Go(func() error {
				views[i] = serializeArticle(gctx, deps, a)
				return nil
			})
		}
		_ = g.Wait()

		httputil.WriteJSON(w, http.StatusOK, views)
	}
}

func getNewsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article, ok := lookupArticle(deps, w, r)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, serializeArticle(r.Context(), deps, article))
	}
}

func createNewsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createArticleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid JSON body", err, http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			httputil.Fail(deps.Log, w, "title and content are required", err, http.StatusBadRequest)
			return
		}
		if req.PublishedAt.IsZero() {
			req.PublishedAt = time.Now().UTC()
		}

		saved, err := deps.Store.SaveArticle(r.Context(), store.Article{
			Title:       req.Title,
			Content:     req.Content,
			URL:         req.URL,
			Source:      req.Source,
			PublishedAt: req.PublishedAt,
			Tags:        req.Tags,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to save article", err, http.StatusInternalServerError)
			return
		}
		// Reference choices for existing analyses may change with a new article.
		if err := deps.Cache.InvalidatePrefix(r.Context(), "analysis:"); err != nil {
			deps.Log.Warn("failed to invalidate cached analyses", "err", err)
		}
		httputil.WriteJSON(w, http.StatusCreated, saved)
	}
}

func articleAnalysisHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		article, ok := lookupArticle(deps, w, r)
		if !ok {
			return
		}

		key := cache.Key("analysis", strconv.Itoa(article.ID), article.Content)
		var cached articleAnalysis
		if hit, err := cache.Load(ctx, deps.Cache, key, &cached); err != nil {
			deps.Log.Warn("analysis cache lookup failed", "err", err)
		} else if hit {
			httputil.WriteJSON(w, http.StatusOK, cached)
			return
		}

		all, err := deps.Store.ListArticles(ctx)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list articles", err, http.StatusInternalServerError)
			return
		}
		reference, hasReference := pickReference(ctx, deps, article, all)

		var out articleAnalysis
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			out.Article = serializeArticle(gctx, deps, article)
			return nil
		})
		g.Go(func() error {
			out.Rhetoric = deps.Analysis.AnalyzeRhetoric(gctx, article.Content)
			return nil
		})
		g.Go(func() error {
			if !hasReference {
				out.Comparison = noReference(deps)
				return nil
			}
			out.Comparison = deps.Analysis.CompareArticles(gctx, article.Content, reference.Content)
			id := reference.ID
			out.Comparison.Reference = &analysis.Reference{ID: &id, Title: reference.Title}
			return nil
		})
		_ = g.Wait()

		if !out.Rhetoric.Failed() && !out.Comparison.Failed() {
			if err := cache.Save(ctx, deps.Cache, key, out, deps.Config.CacheTTL); err != nil {
				deps.Log.Warn("failed to cache analysis", "err", err)
			}
		}
		httputil.WriteJSON(w, http.StatusOK, out)
	}
}

func noReference(deps app.Deps) analysis.Result {
	msg := noReferenceError
	return analysis.Result{
		Model:      deps.Analysis.ComparisonModel(),
		Error:      &msg,
		Text:       noReferenceText,
		Comparison: noReferenceText,
	}
}

// pickReference chooses the article to compare against: the most similar
// other article when an embedder is configured, otherwise the first other one.
func pickReference(ctx context.Context, deps app.Deps, article store.Article, all []store.Article) (store.Article, bool) {
	var others []store.Article
	for _, a := range all {
		if a.ID != article.ID {
			others = append(others, a)
		}
	}
	if len(others) == 0 {
		return store.Article{}, false
	}
	if deps.Embedder == nil || len(others) == 1 {
		return others[0], true
	}

	query, err := deps.Embedder.Embed(ctx, article.Title+"\n\n"+article.Content)
	if err != nil {
		deps.Log.Warn("embedding failed, using first reference", "err", err)
		return others[0], true
	}
	candidates := make([]embeddings.Vector, len(others))
	for i, o := range others {
		v, err := deps.Embedder.Embed(ctx, o.Title+"\n\n"+o.Content)
		if err != nil {
			deps.Log.Warn("embedding failed, using first reference", "err", err, "article_id", o.ID)
			return others[0], true
		}
		candidates[i] = v
	}
	return others[embeddings.MostSimilar(query, candidates)], true
}

func lookupArticle(deps app.Deps, w http.ResponseWriter, r *http.Request) (store.Article, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "Article not found", err, http.StatusNotFound)
		return store.Article{}, false
	}
	article, err := deps.Store.GetArticle(r.Context(), id)
	if errors.Is(err, store.ErrArticleNotFound) {
		httputil.Fail(deps.Log, w, "Article not found", err, http.StatusNotFound)
		return store.Article{}, false
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load article", err, http.StatusInternalServerError)
		return store.Article{}, false
	}
	return article, true
}

func serializeArticle(ctx context.Context, deps app.Deps, a store.Article) articleView {
	return articleView{
		ID:          a.ID,
		Title:       a.Title,
		Summary:     insights.Summary(a.Content, summarySentences),
		Content:     a.Content,
		URL:         a.URL,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
		Sentiment:   classify(ctx, deps, a.Content),
		Insights:    insights.Analyze(a.Content),
	}
}

// classify runs the sentiment classifier through the response cache.
func classify(ctx context.Context, deps app.Deps, text string) sentiment.Result {
	key := cache.Key("sentiment", deps.Sentiment.Model(), text)
	var res sentiment.Result
	if hit, err := cache.Load(ctx, deps.Cache, key, &res); err == nil && hit {
		return res
	}
	res = deps.Sentiment.Analyze(ctx, text)
	if res.Degraded {
		return res
	}
	if err := cache.Save(ctx, deps.Cache, key, res, deps.Config.CacheTTL); err != nil {
		deps.Log.Warn("failed to cache sentiment", "err", err)
	}
	return res
}
