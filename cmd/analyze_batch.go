package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/KaramelBytes/basketloom-cli/internal/table"
	"github.com/KaramelBytes/basketloom-cli/internal/utils"
)

var (
	abFlags     basketFlags
	abOutputDir string
	abNoArchive bool
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Run the association analysis over multiple files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		ac, err := abFlags.analysisConfig(cmd, c.AnalysisConfig())
		if err != nil {
			return err
		}
		topt, err := abFlags.tableOptions()
		if err != nil {
			return err
		}
		if abOutputDir != "" {
			if err := utils.EnsureDir(abOutputDir); err != nil {
				return fmt.Errorf("ensure output dir: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		ok := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := analyzeFile(cmd.Context(), path, ac, topt, c.ReportOptions())
			if err != nil {
				if basket.IsInsufficientData(err) || isTableError(err) {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipping %s: %v\n", filepath.Base(path), err)
					continue
				}
				return err
			}
			ok++
			md := rep.Markdown()
			if abOutputDir != "" {
				outFile := utils.NextFreePath(abOutputDir, utils.SafeBase(path), ".basket.md")
				if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				if !abQuiet {
					fmt.Fprintf(out, "✓ Wrote %s\n", filepath.Base(outFile))
				}
			} else if !abQuiet {
				fmt.Fprintln(out, md)
			}
			if !abNoArchive {
				if _, err := archiveReport(cmd.Context(), c, rep); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
				}
			}
		}
		if ok == 0 {
			return fmt.Errorf("none of the %d files could be analyzed", total)
		}
		if !abQuiet {
			fmt.Fprintf(out, "✓ Analyzed %d/%d files\n", ok, total)
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, deduplicated and sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// isTableError reports failures tied to one input file rather than the run.
func isTableError(err error) bool {
	return errors.Is(err, table.ErrColumnNotFound) || errors.Is(err, table.ErrUnsupportedFormat)
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "write one <name>.basket.md report per input into this directory")
	analyzeBatchCmd.Flags().BoolVar(&abNoArchive, "no-archive", false, "do not record these runs in the analysis history")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
