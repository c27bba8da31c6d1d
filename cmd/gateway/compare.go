package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"news-insight/internal/analysis"
	"news-insight/internal/app"
	"news-insight/internal/httputil"
)

type articleMeta struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

type compareRequest struct {
	Primary   articleMeta `json:"primary"`
	Reference articleMeta `json:"reference"`
}

type compareSide struct {
	Meta     articleMeta     `json:"meta"`
	Rhetoric analysis.Result `json:"rhetoric"`
}

type compareResponse struct {
	Primary    compareSide     `json:"primary"`
	Reference  compareSide     `json:"reference"`
	Comparison analysis.Result `json:"comparison"`
}

func compareHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid JSON body", err, http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Primary.Content) == "" || strings.TrimSpace(req.Reference.Content) == "" {
			httputil.Fail(deps.Log, w, "Both articles must have content.", nil, http.StatusBadRequest)
			return
		}

		resp := compareResponse{
			Primary:   compareSide{Meta: req.Primary},
			Reference: compareSide{Meta: req.Reference},
		}
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			resp.Primary.Rhetoric = deps.Analysis.AnalyzeRhetoric(ctx, req.Primary.Content)
			return nil
		})
		g.Go(func() error {
			resp.Reference.Rhetoric = deps.Analysis.AnalyzeRhetoric(ctx, req.Reference.Content)
			return nil
		})
		g.Go(func() error {
			resp.Comparison = deps.Analysis.CompareArticles(ctx, req.Primary.Content, req.Reference.Content)
			resp.Comparison.Reference = &analysis.Reference{Title: req.Reference.Title, Source: req.Reference.Source}
			return nil
		})
		_ = g.Wait()

		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
