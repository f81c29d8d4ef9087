package basket

import "strings"

// Cell is one value of the transaction column. Valid is false for missing values.
type Cell struct {
	Value string
	Valid bool
}

// Text returns a present cell.
func Text(s string) Cell { return Cell{Value: s, Valid: true} }

// Null returns a missing cell.
func Null() Cell { return Cell{} }

// Cells wraps plain strings as present cells.
func Cells(values ...string) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		out[i] = Text(v)
	}
	return out
}

// Transaction is one cleaned list of item names.
type Transaction []string

// ParseStats summarizes what the parser kept and why rows were dropped.
type ParseStats struct {
	Rows       int `json:"rows"`
	Null       int `json:"null"`
	TooShort   int `json:"too_short"`
	Oversized  int `json:"oversized"`
	Duplicates int `json:"duplicates_removed"`
	Valid      int `json:"valid"`
}

// ParseTransactions splits, trims and filters the column into transactions.
//
// Repeated names inside one row are collapsed to their first occurrence before
// the length check, so "A,A" is a single-item transaction and never forms a
// self-pair. Rows with more than cfg.MaxItems items (when set) are dropped.
func ParseTransactions(column []Cell, cfg Config) ([]Transaction, ParseStats) {
	st := ParseStats{Rows: len(column)}
	minItems := cfg.MinItems
	if minItems < 1 {
		minItems = 1
	}
	out := make([]Transaction, 0, len(column))
	for _, c := range column {
		if !c.Valid {
			st.Null++
			continue
		}
		items, dups := splitItems(c.Value, cfg.Separator)
		st.Duplicates += dups
		if len(items) < minItems {
			st.TooShort++
			continue
		}
		if cfg.MaxItems > 0 && len(items) > cfg.MaxItems {
			st.Oversized++
			continue
		}
		out = append(out, items)
	}
	st.Valid = len(out)
	return out, st
}

func splitItems(s, sep string) (Transaction, int) {
	var parts []string
	if sep == "" {
		parts = []string{s}
	} else {
		parts = strings.Split(s, sep)
	}
	items := make(Transaction, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	dups := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			dups++
			continue
		}
		seen[p] = struct{}{}
		items = append(items, p)
	}
	return items, dups
}
