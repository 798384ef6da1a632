package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/qextract/internal/cache"
	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/pipeline"
)

var (
	outJSON      string
	level        string
	forceName    string
	minLength    int
	maxLength    int
	patternsFile string
	answersFile  string
	noCache      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract questions from one document",
	Long: `Extract reads a .txt, .md, .html or .pdf document, extracts its questions
and writes the result as JSON. A one-screen summary goes to stderr.

Example:
  qextract extract midterm.txt
  qextract extract reading_unit3.html --json out/unit3.json --level strict
  qextract extract paper.txt --strategy embeddedCloze --answers key.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	extractCmd.Flags().StringVar(&level, "level", "standard", "validation level (basic, standard, strict)")
	extractCmd.Flags().StringVar(&forceName, "strategy", "", "force an extraction strategy instead of detecting the layout")
	extractCmd.Flags().IntVar(&minLength, "min-length", 10, "minimum question text length")
	extractCmd.Flags().IntVar(&maxLength, "max-length", 1000, "maximum question text length")
	extractCmd.Flags().StringVar(&patternsFile, "patterns", "", "pattern library YAML (default: built-in)")
	extractCmd.Flags().StringVar(&answersFile, "answers", "", "answer key YAML mapping question number to letter")
	extractCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
}

// applyExtractionFlags overlays explicitly set flags on the loaded config
func applyExtractionFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("level") {
		cfg.Extraction.ValidationLevel = level
	}
	if flags.Changed("strategy") {
		cfg.Extraction.ForceStrategy = forceName
	}
	if flags.Changed("min-length") {
		cfg.Extraction.MinQuestionLength = minLength
	}
	if flags.Changed("max-length") {
		cfg.Extraction.MaxQuestionLength = maxLength
	}
	if flags.Changed("patterns") {
		cfg.Patterns.File = patternsFile
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg := *appCfg
	applyExtractionFlags(cmd, &cfg)

	lib, err := loadLibrary(cfg.Patterns.File)
	if err != nil {
		return err
	}
	opts, err := pipeline.OptionsFromConfig(cfg.Extraction)
	if err != nil {
		return err
	}

	loaded, err := pipeline.NewLoader(0).Load(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	res, cached := pipeline.NewExtractor(lib, logger).RunCached(cache.New(cfg.Cache), loaded.Document, opts)
	logger.Debug("extracted",
		zap.String("path", path),
		zap.String("kind", loaded.Kind),
		zap.Bool("cached", cached))

	if answersFile != "" {
		answers, err := readAnswers(answersFile)
		if err != nil {
			return err
		}
		res.Questions = pipeline.AttachAnswers(res.Questions, answers)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	if outJSON != "" {
		if err := renderer.RenderJSON(res, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	} else if err := renderer.WriteJSON(cmd.OutOrStdout(), res); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	renderer.RenderSummary(cmd.ErrOrStderr(), res)
	return nil
}

// readAnswers reads a YAML answer key such as {"1": "B", "2": "D"}
func readAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	answers := make(map[string]string)
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	return answers, nil
}
