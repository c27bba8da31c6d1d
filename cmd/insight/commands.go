package main

import (
	"github.com/spf13/cobra"

	"news-insight/internal/chunker"
	"news-insight/internal/insights"
	"news-insight/internal/tokenizer"
)

func newSentimentCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment [file]",
		Short: "Classify the sentiment of an article",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, optionalArg(args))
			if err != nil {
				return err
			}
			core, err := e.core()
			if err != nil {
				return err
			}
			defer core.Close()
			return printJSON(cmd, core.Sentiment.Analyze(cmd.Context(), text))
		},
	}
}

func newRhetoricCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rhetoric [file]",
		Short: "Analyze tone and rhetorical devices",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, optionalArg(args))
			if err != nil {
				return err
			}
			core, err := e.core()
			if err != nil {
				return err
			}
			defer core.Close()
			return printJSON(cmd, core.Analysis.AnalyzeRhetoric(cmd.Context(), text))
		},
	}
}

func newCompareCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <primary> <reference>",
		Short: "Compare the framing of two articles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			reference, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			core, err := e.core()
			if err != nil {
				return err
			}
			defer core.Close()
			return printJSON(cmd, core.Analysis.CompareArticles(cmd.Context(), primary, reference))
		},
	}
}

func newChunkCmd(e *env) *cobra.Command {
	var (
		model     string
		maxTokens int
	)
	cmd := &cobra.Command{
		Use:   "chunk [file]",
		Short: "Split an article into token-bounded chunks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, optionalArg(args))
			if err != nil {
				return err
			}
			c := chunker.Chunker{
				Provider: tokenizer.NewProvider(tokenizer.WithLogger(e.log)),
				Model:    model,
			}
			chunks := c.Chunk(text, maxTokens)
			if chunks == nil {
				chunks = []chunker.Chunk{}
			}
			return printJSON(cmd, chunks)
		},
	}
	cmd.Flags().StringVar(&model, "model", "cl100k_base", "tokenizer model or encoding name")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 400, "maximum tokens per chunk")
	return cmd
}

func newInsightsCmd(e *env) *cobra.Command {
	var summarySentences int
	cmd := &cobra.Command{
		Use:   "insights [file]",
		Short: "Print word counts, keywords and a short summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, optionalArg(args))
			if err != nil {
				return err
			}
			return printJSON(cmd, struct {
				Summary  string            `json:"summary"`
				Insights insights.Insights `json:"insights"`
			}{
				Summary:  insights.Summary(text, summarySentences),
				Insights: insights.Analyze(text),
			})
		},
	}
	cmd.Flags().IntVar(&summarySentences, "sentences", 2, "sentences kept in the summary")
	return cmd
}
