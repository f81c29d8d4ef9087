package basket

import (
	"context"
	"errors"
)

// Result is the output of one market-basket analysis.
type Result struct {
	Config Config `json:"config"`
	// Associations holds every observed pair, ranked, before support filtering.
	Associations      []AssociationRecord `json:"associations"`
	Triplets          []TripletRecord     `json:"triplets"`
	ItemFrequency     []ItemCount         `json:"item_frequency"`
	TotalTransactions int                 `json:"total_transactions"`
	UniqueItems       int                 `json:"unique_item_count"`
	AvgItems          float64             `json:"avg_items_per_transaction"`
	Stats             ParseStats          `json:"parse_stats"`
}

// Analyze runs parse, count, metrics and ranking over one column.
// Errors are *ConfigError, *InsufficientDataError, or a context error.
func Analyze(ctx context.Context, column []Cell, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	txs, st := ParseTransactions(column, cfg)
	return AnalyzeTransactions(ctx, txs, st, cfg)
}

// AnalyzeTransactions runs the pipeline on already parsed transactions, for
// callers that memoize ParseTransactions.
func AnalyzeTransactions(ctx context.Context, txs []Transaction, st ParseStats, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	counts, err := Count(ctx, txs)
	if err != nil {
		var ide *InsufficientDataError
		if errors.As(err, &ide) {
			ide.MinItems = cfg.MinItems
		}
		return nil, err
	}
	recs := Rank(ComputeMetrics(counts.Items, counts.Pairs, counts.Transactions))
	return &Result{
		Config:            cfg,
		Associations:      recs,
		Triplets:          ComputeTriplets(counts.Triplets, counts.Transactions, cfg.TopTriplets),
		ItemFrequency:     counts.TopItems(0),
		TotalTransactions: counts.Transactions,
		UniqueItems:       counts.UniqueItems(),
		AvgItems:          counts.AvgItemsPerTransaction(),
		Stats:             st,
	}, nil
}

// Filtered applies the configured minimum support to the ranked pairs.
func (r *Result) Filtered() []AssociationRecord {
	return r.FilteredAt(r.Config.MinSupportPercent)
}

// FilteredAt applies an explicit minimum support percent.
func (r *Result) FilteredAt(pct int) []AssociationRecord {
	if r == nil {
		return nil
	}
	return FilterBySupport(r.Associations, r.TotalTransactions, pct)
}

// Outcome is the success/error union returned across the output boundary.
// Exactly one of Result or Error is set.
type Outcome struct {
	*Result
	Error string `json:"error,omitempty"`
	Kind  string `json:"error_kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// Error kinds reported in Outcome.Kind.
const (
	KindInsufficientData = "insufficient_data"
	KindInvalidConfig    = "invalid_configuration"
	KindInternal         = "internal"
)

// NewOutcome folds an Analyze return pair into an Outcome.
func NewOutcome(res *Result, err error) Outcome {
	if err == nil {
		return Outcome{Result: res}
	}
	o := Outcome{Error: err.Error(), Kind: KindInternal}
	var ide *InsufficientDataError
	var ce *ConfigError
	switch {
	case errors.As(err, &ide):
		o.Kind = KindInsufficientData
	case errors.As(err, &ce):
		o.Kind = KindInvalidConfig
		o.Field = ce.Field
	}
	return o
}

// OK reports whether the outcome carries a result.
func (o Outcome) OK() bool { return o.Error == "" && o.Result != nil }
