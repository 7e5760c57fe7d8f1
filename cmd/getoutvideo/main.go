// Package main provides a one-shot CLI that processes a single YouTube video
// or playlist URL and writes the styled transcripts to the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/getoutvideo/getoutvideo-api/internal/ai"
	"github.com/getoutvideo/getoutvideo-api/internal/bootstrap"
	"github.com/getoutvideo/getoutvideo-api/internal/config"
	"github.com/getoutvideo/getoutvideo-api/internal/job"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		urlFlag    = flag.String("url", "", "YouTube video or playlist URL (required)")
		stylesFlag = flag.String("styles", "", "comma-separated refinement styles (default: all)")
		langFlag   = flag.String("language", "", "output language override")
		modelFlag  = flag.String("model", "", "generation model override")
		chunkFlag  = flag.Int("chunk-size", 0, "chunk word budget override")
		startFlag  = flag.Int("start", 0, "first playlist entry to process (1-based)")
		endFlag    = flag.Int("end", 0, "last playlist entry to process (inclusive, 0 means all)")
		listFlag   = flag.Bool("list-styles", false, "print the available styles and exit")
	)
	flag.Parse()

	if *listFlag {
		for _, s := range ai.AvailableStyles() {
			fmt.Println(s)
		}
		return nil
	}

	if *urlFlag == "" {
		flag.Usage()
		return fmt.Errorf("-url is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	// Ctrl-C cancels the run; completed outputs are kept.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := job.ProcessURLInput{
		URL:            *urlFlag,
		Styles:         splitStyles(*stylesFlag),
		OutputLanguage: *langFlag,
		ModelName:      *modelFlag,
		ChunkSize:      *chunkFlag,
		StartIndex:     *startFlag,
		EndIndex:       *endFlag,
	}
	if input.Styles == nil {
		input.Styles = cfg.StyleList()
	}

	result, err := deps.URLService.Process(ctx, input)
	if err != nil {
		return fmt.Errorf("process URL: %w", err)
	}

	for _, r := range result.Results {
		fmt.Printf("%s [%s] -> %s ($%.6f)\n", r.VideoTitle, r.Style, r.OutputFilePath, r.Cost)
	}

	switch result.Status {
	case job.StatusCompleted:
		fmt.Printf("done: %d output file(s)\n", len(result.Results))
		return nil
	case job.StatusCancelled:
		return fmt.Errorf("cancelled after %d output file(s)", len(result.Results))
	default:
		return fmt.Errorf("processing failed: %s", result.Error)
	}
}

// splitStyles parses the comma-separated -styles value. Empty and "all" mean
// every registered style.
func splitStyles(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil
	}
	parts := strings.Split(s, ",")
	styles := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			styles = append(styles, trimmed)
		}
	}
	return styles
}
