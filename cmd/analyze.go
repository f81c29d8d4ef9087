package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketloom-cli/internal/archive"
	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	cfgpkg "github.com/KaramelBytes/basketloom-cli/internal/config"
	"github.com/KaramelBytes/basketloom-cli/internal/table"
	"github.com/KaramelBytes/basketloom-cli/internal/utils"
)

var (
	anaFlags       basketFlags
	anaOutputPath  string
	anaFormat      string
	anaCSVPath     string
	anaFreqCSVPath string
	anaTripletsCSV string
	anaNoArchive   bool
)

// jsonReport is the --format json payload.
type jsonReport struct {
	Dataset string `json:"dataset"`
	basket.Outcome
	Filtered []basket.AssociationRecord `json:"filtered_associations"`
	Insight  basket.Insight             `json:"insights"`
	Network  basket.Network             `json:"network"`
	Warnings []string                   `json:"warnings"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Find product associations in a CSV/TSV/XLSX transaction table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		switch anaFormat {
		case "markdown", "md", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json)", anaFormat)
		}
		ac, err := anaFlags.analysisConfig(cmd, c.AnalysisConfig())
		if err != nil {
			return err
		}
		topt, err := anaFlags.tableOptions()
		if err != nil {
			return err
		}
		path := args[0]
		rep, err := analyzeFile(cmd.Context(), path, ac, topt, c.ReportOptions())
		if err != nil {
			printDiagnostic(cmd.ErrOrStderr(), err)
			return err
		}

		var out []byte
		if anaFormat == "json" {
			out, err = utils.PrettyJSON(newJSONReport(rep))
			if err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}

		exports := []struct {
			path  string
			write func(io.Writer) error
		}{
			{anaCSVPath, func(w io.Writer) error { return basket.WriteAssociationsCSV(w, rep.Filtered) }},
			{anaFreqCSVPath, func(w io.Writer) error { return basket.WriteFrequencyCSV(w, rep.Result.ItemFrequency) }},
			{anaTripletsCSV, func(w io.Writer) error { return basket.WriteTripletsCSV(w, rep.Result.Triplets) }},
		}
		for _, e := range exports {
			if e.path == "" {
				continue
			}
			if err := writeCSVFile(e.path, e.write); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", e.path)
		}

		if !anaNoArchive {
			id, err := archiveReport(cmd.Context(), c, rep)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
			} else if id != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Archived analysis %s\n", id)
			}
		}
		return nil
	},
}

// analyzeFile loads path, extracts the transaction column and runs the analysis.
func analyzeFile(ctx context.Context, path string, ac basket.Config, topt table.Options, ropt basket.ReportOptions) (*basket.Report, error) {
	tbl, err := table.Load(path, topt)
	if err != nil {
		return nil, err
	}
	col, err := tbl.Column(ac.TransactionColumn)
	if err != nil {
		return nil, err
	}
	if tbl.Truncated {
		log.WithFields(logrus.Fields{"dataset": tbl.Name, "max_rows": topt.MaxRows}).Warn("row limit reached; remaining rows ignored")
	}
	res, err := basket.Analyze(ctx, col, ac)
	if err != nil {
		return nil, err
	}
	if n := res.Stats.Oversized; n > 0 {
		log.WithFields(logrus.Fields{"dataset": tbl.Name, "rows": n, "max_items": ac.MaxItems}).Warn("oversized transactions dropped")
	}
	log.WithFields(logrus.Fields{
		"dataset":      tbl.Name,
		"rows":         tbl.Len(),
		"transactions": res.TotalTransactions,
		"pairs":        len(res.Associations),
	}).Debug("analysis complete")
	return basket.NewReport(tbl.Name, res, ropt), nil
}

func newJSONReport(rep *basket.Report) jsonReport {
	j := jsonReport{
		Dataset:  rep.Name,
		Outcome:  basket.NewOutcome(rep.Result, nil),
		Filtered: rep.Filtered,
		Insight:  rep.Insight,
		Network:  rep.Network,
		Warnings: rep.Warnings,
	}
	if j.Warnings == nil {
		j.Warnings = []string{}
	}
	return j
}

// printDiagnostic explains analysis failures the user can fix with flags.
func printDiagnostic(w io.Writer, err error) {
	var ide *basket.InsufficientDataError
	switch {
	case errors.As(err, &ide):
		fmt.Fprintf(w, "⚠ Not enough transactions for association analysis (%d valid, need %d).\n", ide.Valid, ide.Required)
		if ide.Valid == 0 && ide.MinItems > 1 {
			fmt.Fprintln(w, "  Each transaction has only one item; lower --min-products or check --separator.")
		} else {
			fmt.Fprintln(w, "  Add more transactions or lower --min-products.")
		}
	case errors.Is(err, table.ErrColumnNotFound):
		fmt.Fprintln(w, "⚠ Pick the transaction column with --column <name>.")
	case basket.IsConfigError(err):
		fmt.Fprintln(w, "⚠ Check the analysis flags; run with --help for valid ranges.")
	}
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// archiveReport stores rep when an archive is configured and returns its id.
func archiveReport(ctx context.Context, c *cfgpkg.Global, rep *basket.Report) (string, error) {
	st, err := openArchive(c)
	if err != nil || st == nil {
		return "", err
	}
	defer st.Close()
	rec := archive.NewRecord(rep.Name, rep.Result)
	if err := st.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("archive analysis: %w", err)
	}
	return rec.ID, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "report format: markdown|json")
	analyzeCmd.Flags().StringVar(&anaCSVPath, "csv", "", "write filtered associations as CSV to this path")
	analyzeCmd.Flags().StringVar(&anaFreqCSVPath, "freq-csv", "", "write item purchase counts as CSV to this path")
	analyzeCmd.Flags().StringVar(&anaTripletsCSV, "triplets-csv", "", "write triplets as CSV to this path")
	analyzeCmd.Flags().BoolVar(&anaNoArchive, "no-archive", false, "do not record this run in the analysis history")
}
