package basket

import (
	"fmt"
	"strings"
)

// Report bundles a Result with its presentation choices.
type Report struct {
	Name     string
	Result   *Result
	Filtered []AssociationRecord
	Insight  Insight
	Network  Network
	Warnings []string

	// DisplayLimit caps the association table; 0 shows all.
	DisplayLimit int
	// FrequencyTopN caps the most-purchased list; 0 shows all.
	FrequencyTopN int
}

// ReportOptions tunes NewReport.
type ReportOptions struct {
	DisplayLimit  int
	FrequencyTopN int
	NetworkTopN   int
}

// DefaultReportOptions mirrors the dashboard's display caps.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{DisplayLimit: 50, FrequencyTopN: 25, NetworkTopN: 20}
}

// NewReport filters res at its configured support and derives insights.
func NewReport(name string, res *Result, opt ReportOptions) *Report {
	filtered := res.Filtered()
	r := &Report{
		Name:          name,
		Result:        res,
		Filtered:      filtered,
		Insight:       Insights(filtered),
		Network:       BuildNetwork(filtered, opt.NetworkTopN),
		DisplayLimit:  opt.DisplayLimit,
		FrequencyTopN: opt.FrequencyTopN,
	}
	st := res.Stats
	if st.Null > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d rows skipped: missing value", st.Null))
	}
	if st.TooShort > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d rows skipped: fewer than %d items", st.TooShort, res.Config.MinItems))
	}
	if st.Oversized > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d rows skipped: more than %d items", st.Oversized, res.Config.MaxItems))
	}
	if st.Duplicates > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d repeated items collapsed within their transaction", st.Duplicates))
	}
	if len(filtered) == 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("no associations found with %d%% support; lower the threshold", res.Config.MinSupportPercent))
	}
	return r
}

// Displayed returns the filtered records capped at DisplayLimit.
func (r *Report) Displayed() []AssociationRecord {
	if r.DisplayLimit > 0 && len(r.Filtered) > r.DisplayLimit {
		return r.Filtered[:r.DisplayLimit]
	}
	return r.Filtered
}

// Markdown renders a compact summary suitable for docs or terminals.
func (r *Report) Markdown() string {
	res := r.Result
	var b strings.Builder
	b.WriteString("[MARKET BASKET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if res.Config.TransactionColumn != "" {
		b.WriteString(fmt.Sprintf("Column: %s (separator %q)\n", res.Config.TransactionColumn, res.Config.Separator))
	}
	if res.Stats.Rows > 0 && res.Stats.Rows != res.TotalTransactions {
		b.WriteString(fmt.Sprintf("Transactions: %d (of %d rows)\n", res.TotalTransactions, res.Stats.Rows))
	} else {
		b.WriteString(fmt.Sprintf("Transactions: %d\n", res.TotalTransactions))
	}
	b.WriteString(fmt.Sprintf("Unique products: %d\n", res.UniqueItems))
	b.WriteString(fmt.Sprintf("Product pairs found: %d (%d at >= %d%% support)\n", len(res.Associations), len(r.Filtered), res.Config.MinSupportPercent))
	b.WriteString(fmt.Sprintf("Avg products/transaction: %.1f\n\n", res.AvgItems))

	b.WriteString("[TOP ASSOCIATIONS]\n")
	shown := r.Displayed()
	if len(shown) == 0 {
		b.WriteString("(none)\n")
	}
	for _, a := range shown {
		b.WriteString(fmt.Sprintf("- %s + %s: %d together; support %s, conf A→B %s, conf B→A %s, lift %s\n",
			safeVal(a.ItemA), safeVal(a.ItemB), a.Cooccurrence,
			FormatPercent(a.Support), FormatPercent(a.ConfidenceAToB), FormatPercent(a.ConfidenceBToA), FormatLift(a.Lift)))
	}
	if len(shown) < len(r.Filtered) {
		b.WriteString(fmt.Sprintf("(+%d more)\n", len(r.Filtered)-len(shown)))
	}

	if len(res.Triplets) > 0 {
		b.WriteString("\n[TOP TRIPLETS]\n")
		for _, t := range res.Triplets {
			b.WriteString(fmt.Sprintf("- %s: %d together; support %s\n", safeVal(t.Label()), t.Cooccurrence, FormatPercent(t.Support)))
		}
	}

	b.WriteString("\n[MOST PURCHASED]\n")
	freq := res.ItemFrequency
	if r.FrequencyTopN > 0 && len(freq) > r.FrequencyTopN {
		freq = freq[:r.FrequencyTopN]
	}
	for _, it := range freq {
		b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(it.Item), it.Count))
	}

	if len(r.Insight.Messages) > 0 {
		b.WriteString("\n[INSIGHTS]\n")
		for _, m := range r.Insight.Messages {
			b.WriteString("- " + m + "\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
