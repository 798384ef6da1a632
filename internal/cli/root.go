package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/qextract/internal/logging"
	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
)

const version = "qextract v0.1.0"

var (
	cfgFile string
	verbose bool

	// set by PersistentPreRunE
	appCfg    *model.Config
	logger    = zap.NewNop()
	configErr error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qextract",
	Short: "qextract - exam question extraction from OCR text",
	Long: `qextract turns OCR text of exam papers into structured question records.

It detects the paper layout, runs the matching extraction strategies with a
baseline fallback, splits options, resolves shared-passage question groups
and reports quality findings for every question.

Extraction is deterministic: the same text, pattern library and options
always produce the same questions.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.FromConfig(cfg.Logging, verbose || cfg.Output.Verbose)
		if err != nil {
			return err
		}
		appCfg, logger = cfg, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.qextract/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and QEXTRACT_* environment variables
func initConfig() {
	configErr = nil
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".qextract"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// QEXTRACT_EXTRACTION_VALIDATION_LEVEL -> extraction.validation_level
	viper.SetEnvPrefix("QEXTRACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so env variables can override it
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("extraction.min_question_length", cfg.Extraction.MinQuestionLength)
	v.SetDefault("extraction.max_question_length", cfg.Extraction.MaxQuestionLength)
	v.SetDefault("extraction.validation_level", cfg.Extraction.ValidationLevel)
	v.SetDefault("extraction.force_strategy", cfg.Extraction.ForceStrategy)
	v.SetDefault("patterns.file", cfg.Patterns.File)
	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	v.SetDefault("concurrency.doc_timeout", cfg.Concurrency.DocTimeout)
	v.SetDefault("concurrency.batch_timeout", cfg.Concurrency.BatchTimeout)
	v.SetDefault("rate_limiting.documents_per_second", cfg.RateLimiting.DocumentsPerSecond)
	v.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.pretty", cfg.Output.Pretty)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// loadConfig merges defaults, config file and environment
func loadConfig() (*model.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// loadLibrary returns the configured pattern library, or the built-in one
func loadLibrary(path string) (*patterns.Library, error) {
	if path == "" {
		return patterns.Default(), nil
	}
	lib, err := patterns.LoadFile(path, logger)
	if err != nil {
		return nil, fmt.Errorf("load pattern library: %w", err)
	}
	if skipped := lib.Skipped(); len(skipped) > 0 {
		logger.Warn("pattern library loaded with skipped entries",
			zap.String("file", path),
			zap.Strings("skipped", skipped))
	}
	return lib, nil
}
