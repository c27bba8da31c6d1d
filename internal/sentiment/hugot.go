//go:build ORT

package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotPipeline runs a Hugging Face text-classification model in process
// through ONNX Runtime. Building it needs the ORT tag and the native
// onnxruntime and tokenizers libraries.
type HugotPipeline struct {
	name     string
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// NewHugotPipeline loads modelName from modelDir, downloading it first when
// it is not present.
func NewHugotPipeline(modelName, modelDir string, log *slog.Logger) (*HugotPipeline, error) {
	modelPath, err := ensureModel(modelName, modelDir, log)
	if err != nil {
		return nil, err
	}
	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("init hugot session: %w", err)
	}
	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentiment",
	})
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("init text classification pipeline: %w", err)
	}
	return &HugotPipeline{name: modelName, session: session, pipeline: pipeline}, nil
}

func ensureModel(modelName, modelDir string, log *slog.Logger) (string, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}
	local := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(local); err == nil {
		log.Info("using cached classification model", "path", local)
		return local, nil
	}
	log.Info("classification model not found, downloading", "model", modelName)
	path, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("download %s: %w", modelName, err)
	}
	return path, nil
}

func (h *HugotPipeline) Name() string { return h.name }

func (h *HugotPipeline) Classify(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	h.mu.Lock()
	out, err := h.pipeline.RunPipeline([]string{text})
	h.mu.Unlock()
	if err != nil {
		return Prediction{}, fmt.Errorf("run pipeline: %w", err)
	}
	if len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return Prediction{}, errors.New("pipeline returned no classification")
	}
	best := out.ClassificationOutputs[0][0]
	return Prediction{Label: best.Label, Score: float64(best.Score)}, nil
}

// Close releases the inference session.
func (h *HugotPipeline) Close() error {
	return h.session.Destroy()
}
