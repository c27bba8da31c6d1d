//go:build !ORT

package sentiment

import (
	"context"
	"errors"
	"log/slog"
)

// ErrHugotUnavailable is returned by NewHugotPipeline in builds without the
// ORT tag.
var ErrHugotUnavailable = errors.New("hugot support not compiled in (build with -tags ORT)")

// HugotPipeline is a placeholder in builds without ONNX Runtime.
type HugotPipeline struct{}

func NewHugotPipeline(string, string, *slog.Logger) (*HugotPipeline, error) {
	return nil, ErrHugotUnavailable
}

func (*HugotPipeline) Name() string { return "hugot" }

func (*HugotPipeline) Classify(context.Context, string) (Prediction, error) {
	return Prediction{}, ErrHugotUnavailable
}

func (*HugotPipeline) Close() error { return nil }
