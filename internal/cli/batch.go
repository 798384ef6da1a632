package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/qextract/internal/cache"
	"github.com/ppiankov/qextract/internal/pipeline"
	"github.com/ppiankov/qextract/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	docsPerSec   float64
	docTimeout   time.Duration
	batchTimeout time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir|listfile>",
	Short: "Extract questions from many documents concurrently",
	Long: `Batch extracts every supported document under a directory, or every path
listed in a file (one per line, # comments allowed), and writes one JSON
result per document into the output directory.

Example:
  qextract batch ./papers --concurrency 8
  qextract batch papers.txt --output-dir results --rate 2 --doc-timeout 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "number of concurrent workers")
	batchCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "./qextract-results", "output directory")
	batchCmd.Flags().Float64Var(&docsPerSec, "rate", 0, "documents per second per source directory (0 = unlimited)")
	batchCmd.Flags().DurationVar(&docTimeout, "doc-timeout", 5*time.Second, "per-document time limit (0 = none)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "overall batch timeout")

	batchCmd.Flags().StringVar(&level, "level", "standard", "validation level (basic, standard, strict)")
	batchCmd.Flags().StringVar(&forceName, "strategy", "", "force an extraction strategy for every document")
	batchCmd.Flags().StringVar(&patternsFile, "patterns", "", "pattern library YAML (default: built-in)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := *appCfg
	applyExtractionFlags(cmd, &cfg)
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("rate") {
		cfg.RateLimiting.DocumentsPerSecond = docsPerSec
	}
	if flags.Changed("doc-timeout") {
		cfg.Concurrency.DocTimeout = docTimeout
	}
	if flags.Changed("timeout") {
		cfg.Concurrency.BatchTimeout = batchTimeout
	}

	paths, err := worker.CollectPaths(args[0])
	if err != nil {
		return err
	}
	lib, err := loadLibrary(cfg.Patterns.File)
	if err != nil {
		return err
	}
	opts, err := pipeline.OptionsFromConfig(cfg.Extraction)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if cfg.Concurrency.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Concurrency.BatchTimeout)
		defer cancel()
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  qextract batch\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Input:        %s (%d documents)\n", args[0], len(paths))
	fmt.Fprintf(errOut, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(errOut, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(errOut, "  Timeout:      %v\n", cfg.Concurrency.BatchTimeout)
	fmt.Fprintf(errOut, "\n")

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	runner := worker.NewDocumentRunner(pipeline.NewLoader(0), pipeline.NewExtractor(lib, logger), cache.New(cfg.Cache), opts)
	processor := worker.NewBatchProcessor(runner, worker.BatchOptions{
		Concurrency: cfg.Concurrency.Workers,
		DocTimeout:  cfg.Concurrency.DocTimeout,
		Limiter:     worker.NewLimiter(cfg.RateLimiting.DocumentsPerSecond, cfg.RateLimiting.BurstSize),
		Logger:      logger,
		OnProgress: func(p worker.Progress, doc *worker.DocResult) {
			if doc.Error != nil {
				fmt.Fprintf(errOut, "[%d/%d] ✗ %s: %v\n", p.Done, p.Total, doc.Path, doc.Error)
				return
			}
			jsonPath := filepath.Join(cfg.Output.Dir, resultName(doc.Path, doc.DocumentID))
			if err := renderer.RenderJSON(doc.Result, jsonPath); err != nil {
				fmt.Fprintf(errOut, "[%d/%d] ✗ %s: failed to write JSON: %v\n", p.Done, p.Total, doc.Path, err)
				return
			}
			fmt.Fprintf(errOut, "[%d/%d] ✓ %s (%d questions, score %.2f)\n",
				p.Done, p.Total, doc.Path, len(doc.Result.Questions), doc.Result.Report.OverallScore)
		},
	})

	out := processor.Process(ctx, paths)

	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  Batch complete\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Total:     %d documents\n", out.Progress.Total)
	fmt.Fprintf(errOut, "  Success:   %d\n", out.Progress.Done-out.Progress.Failed)
	fmt.Fprintf(errOut, "  Failures:  %d\n", out.Progress.Failed)
	fmt.Fprintf(errOut, "  Cached:    %d\n", out.Progress.Cached)
	fmt.Fprintf(errOut, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(errOut, "\n")

	if out.Progress.Failed > 0 && out.Progress.Failed == out.Progress.Total {
		return fmt.Errorf("all %d documents failed", out.Progress.Total)
	}
	return nil
}

// resultName builds "<base>-<id prefix>.json" so equal file names in
// different directories do not collide
func resultName(path, docID string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '-'
		}
		return r
	}, base)
	if len(base) > 100 {
		base = base[:100]
	}
	if len(docID) > 8 {
		docID = docID[:8]
	}
	return base + "-" + docID + ".json"
}
