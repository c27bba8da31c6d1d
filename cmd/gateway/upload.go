package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"news-insight/internal/analysis"
	"news-insight/internal/app"
	"news-insight/internal/httputil"
	"news-insight/internal/insights"
	"news-insight/internal/sentiment"
)

type uploadResponse struct {
	Filename  string            `json:"filename"`
	Summary   string            `json:"summary"`
	Insights  insights.Insights `json:"insights"`
	Sentiment sentiment.Result  `json:"sentiment"`
	Rhetoric  analysis.Result   `json:"rhetoric"`
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1<<20)

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			switch strings.ToLower(filepath.Ext(header.Filename)) {
			case ".txt":
				contentType = "text/plain"
			case ".pdf":
				contentType = "application/pdf"
			}
		}
		if contentType != "text/plain" && contentType != "application/pdf" {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text := strings.TrimSpace(extractText(deps, header.Filename, contentType, content))
		if text == "" {
			httputil.Fail(deps.Log, w, analysis.ErrNoContent, nil, http.StatusBadRequest)
			return
		}

		resp := uploadResponse{
			Filename: header.Filename,
			Summary:  insights.Summary(text, summarySentences),
			Insights: insights.Analyze(text),
		}
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			resp.Sentiment = deps.Sentiment.Analyze(ctx, text)
			return nil
		})
		g.Go(func() error {
			resp.Rhetoric = deps.Analysis.AnalyzeRhetoric(ctx, text)
			return nil
		})
		_ = g.Wait()

		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

// extractText extracts text from uploaded files, with PDF support.
func extractText(deps app.Deps, filename, contentType string, content []byte) string {
	if contentType == "application/pdf" {
		text, err := extractPDF(content)
		if err != nil {
			deps.Log.Warn("pdf extraction failed", "err", err, "filename", filename)
			return ""
		}
		return text
	}
	return string(content)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}
