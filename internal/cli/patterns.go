package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/qextract/internal/patterns"
)

var exportPath string

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List or export the active pattern library",
	Long: `Patterns prints a summary of the pattern library in use (built-in, or the
file set by --patterns / patterns.file). With --export the full definition is
written as YAML, ready to be edited and loaded back.

Example:
  qextract patterns
  qextract patterns --export my-library.yaml
  qextract patterns --export -`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.Flags().StringVar(&exportPath, "export", "", "write the definition as YAML to this file (- for stdout)")
	patternsCmd.Flags().StringVar(&patternsFile, "patterns", "", "pattern library YAML (default: built-in)")
}

func runPatterns(cmd *cobra.Command, args []string) error {
	path := appCfg.Patterns.File
	if cmd.Flags().Changed("patterns") {
		path = patternsFile
	}
	lib, err := loadLibrary(path)
	if err != nil {
		return err
	}

	switch exportPath {
	case "":
		return listPatterns(cmd.OutOrStdout(), lib)
	case "-":
		return patterns.Export(cmd.OutOrStdout(), lib)
	}

	f, err := os.Create(exportPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := patterns.Export(f, lib); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported pattern library %s to %s\n", lib.Version(), exportPath)
	return nil
}

func listPatterns(w io.Writer, lib *patterns.Library) error {
	def := lib.Definition()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Pattern library %s\n\n", lib.Version())
	fmt.Fprintf(tw, "SECTION\tENTRIES\tIDS\n")

	rows := []struct {
		name string
		defs []patterns.PatternDef
	}{
		{"group_markers", def.GroupMarkers},
		{"question_markers", def.QuestionMarkers},
		{"member_templates", def.MemberTemplates},
		{"cloze_templates", def.ClozeTemplates},
		{"option_markers", def.OptionMarkers},
		{"essay_markers", def.EssayMarkers},
		{"choice_markers", def.ChoiceMarkers},
		{"comprehensive_markers", def.ComprehensiveMarkers},
		{"fill_blank_markers", def.FillBlankMarkers},
		{"noise_lines", def.NoiseLines},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.name, len(r.defs), joinIDs(r.defs))
	}
	fmt.Fprintf(tw, "filename_hints\t%d\t\n", len(def.FilenameHints))
	fmt.Fprintf(tw, "option_glyphs\t%d\t\n", len(def.OptionGlyphs))
	fmt.Fprintf(tw, "option_lexicon\t%d\t\n", len(def.OptionLexicon))
	fmt.Fprintf(tw, "denylist\t%d\t\n", len(def.Denylist))
	fmt.Fprintf(tw, "interrogatives\t%d\t\n", len(def.Interrogatives))

	if skipped := lib.Skipped(); len(skipped) > 0 {
		fmt.Fprintf(tw, "\nSkipped (failed to compile): %v\n", skipped)
	}
	return tw.Flush()
}

func joinIDs(defs []patterns.PatternDef) string {
	out := ""
	for i, d := range defs {
		if i > 0 {
			out += ", "
		}
		out += d.ID
	}
	return out
}
