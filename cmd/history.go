package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketloom-cli/internal/archive"
	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/KaramelBytes/basketloom-cli/internal/utils"
)

var (
	histLimit  int
	histShowID string
	histJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived analyses or show one of them",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		st, err := openArchive(c)
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("analysis history is disabled (archive_backend: none)")
		}
		defer st.Close()
		out := cmd.OutOrStdout()

		if histShowID != "" {
			rec, err := st.Get(cmd.Context(), histShowID)
			if errors.Is(err, archive.ErrNotFound) {
				return fmt.Errorf("no archived analysis with id %s", histShowID)
			}
			if err != nil {
				return err
			}
			if histJSON {
				b, err := utils.PrettyJSON(rec)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintf(out, "Analysis %s (%s)\n\n", rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if rec.Result == nil {
				fmt.Fprintln(out, "(no stored result)")
				return nil
			}
			fmt.Fprintln(out, basket.NewReport(rec.Dataset, rec.Result, c.ReportOptions()).Markdown())
			return nil
		}

		recs, err := st.List(cmd.Context(), histLimit)
		if err != nil {
			return err
		}
		if histJSON {
			b, err := utils.PrettyJSON(recs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(recs) == 0 {
			fmt.Fprintln(out, "(no analyses)")
			return nil
		}
		for _, r := range recs {
			fmt.Fprintf(out, "- %s  %s  %s [%s]  transactions=%d pairs=%d support>=%d%%\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Dataset, r.Column,
				r.TotalTransactions, r.PairCount, r.Parameters.MinSupportPercent)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&histLimit, "limit", 20, "maximum analyses to list (0 = all)")
	historyCmd.Flags().StringVar(&histShowID, "show", "", "show the full report of one analysis by id")
	historyCmd.Flags().BoolVar(&histJSON, "json", false, "print records as JSON")
}
