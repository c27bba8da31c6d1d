package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"news-insight/internal/app"
	"news-insight/internal/config"
	"news-insight/internal/logger"
)

// env carries what commands need from the outside world so tests can swap it.
type env struct {
	loadConfig func() (config.Config, error)
	buildCore  func(cfg config.Config, log *slog.Logger) (app.Core, error)

	cfg config.Config
	log *slog.Logger
}

func defaultEnv() *env {
	return &env{
		loadConfig: app.LoadConfig,
		buildCore: func(cfg config.Config, log *slog.Logger) (app.Core, error) {
			return app.BuildCore(cfg, log, nil)
		},
	}
}

func newRootCmd(e *env) *cobra.Command {
	var analysisBackend, sentimentBackend, logLevel string

	root := &cobra.Command{
		Use:   "insight",
		Short: "Analyze news articles from the command line",
		Long: `insight runs the news analysis stack against local files or stdin and
prints JSON.

Example usage:
  insight sentiment article.txt
  cat article.txt | insight rhetoric
  insight compare left.txt right.txt --analysis-backend completion
  insight chunk article.txt --max-tokens 128`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if analysisBackend != "" {
				cfg.AnalysisBackend = analysisBackend
			}
			if sentimentBackend != "" {
				cfg.SentimentBackend = sentimentBackend
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			e.cfg = cfg
			e.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, "text")
			return nil
		},
	}

	root.PersistentFlags().StringVar(&analysisBackend, "analysis-backend", "", "rhetoric/comparison backend: chat or completion (default from ANALYSIS_BACKEND)")
	root.PersistentFlags().StringVar(&sentimentBackend, "sentiment-backend", "", "sentiment backend: chat, completion, hugot or vader (default from SENTIMENT_BACKEND)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default from LOG_LEVEL)")

	root.AddCommand(
		newSentimentCmd(e),
		newRhetoricCmd(e),
		newCompareCmd(e),
		newChunkCmd(e),
		newInsightsCmd(e),
	)
	return root
}

func (e *env) core() (app.Core, error) {
	core, err := e.buildCore(e.cfg, e.log)
	if err != nil {
		return app.Core{}, fmt.Errorf("failed to initialize analysis backends: %w", err)
	}
	return core, nil
}

// readInput reads the named file, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", displayName(path), err)
	}
	return strings.TrimSpace(string(data)), nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
