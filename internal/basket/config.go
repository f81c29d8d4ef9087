package basket

import "strings"

// Config controls a single market-basket analysis. It is passed by value into
// every stage and never mutated by the pipeline.
type Config struct {
	// TransactionColumn names the table column holding delimited item lists.
	TransactionColumn string `json:"transaction_column" yaml:"transaction_column"`
	// Separator splits a cell into items. Exact substring match, not a regex.
	Separator string `json:"separator" yaml:"separator"`
	// MinItems is the minimum number of cleaned items a transaction needs to be counted.
	MinItems int `json:"min_products" yaml:"min_products"`
	// MinSupportPercent filters pairs for presentation (1-100).
	MinSupportPercent int `json:"min_support_percent" yaml:"min_support_percent"`
	// TopTriplets caps the triplet output.
	TopTriplets int `json:"top_triplets" yaml:"top_triplets"`
	// MaxItems drops transactions with more cleaned items than this; 0 means unlimited.
	MaxItems int `json:"max_items_per_transaction" yaml:"max_items_per_transaction"`
}

// DefaultConfig returns the defaults used by the dashboard.
func DefaultConfig() Config {
	return Config{
		Separator:         ",",
		MinItems:          2,
		MinSupportPercent: 5,
		TopTriplets:       20,
		MaxItems:          50,
	}
}

// Validate reports the first offending field as a *ConfigError.
func (c Config) Validate() error {
	if c.Separator == "" {
		return &ConfigError{Field: "separator", Value: c.Separator, Reason: "must not be empty"}
	}
	if c.MinItems < 1 {
		return &ConfigError{Field: "min_products", Value: c.MinItems, Reason: "must be at least 1"}
	}
	if c.MinSupportPercent < 1 || c.MinSupportPercent > 100 {
		return &ConfigError{Field: "min_support_percent", Value: c.MinSupportPercent, Reason: "must be between 1 and 100"}
	}
	if c.TopTriplets < 0 {
		return &ConfigError{Field: "top_triplets", Value: c.TopTriplets, Reason: "must not be negative"}
	}
	if c.MaxItems < 0 {
		return &ConfigError{Field: "max_items_per_transaction", Value: c.MaxItems, Reason: "must not be negative"}
	}
	if c.MaxItems > 0 && c.MaxItems < c.MinItems {
		return &ConfigError{Field: "max_items_per_transaction", Value: c.MaxItems, Reason: "must be 0 or at least min_products"}
	}
	return nil
}

// WithColumn returns a copy of c targeting the given column.
func (c Config) WithColumn(name string) Config {
	c.TransactionColumn = strings.TrimSpace(name)
	return c
}
