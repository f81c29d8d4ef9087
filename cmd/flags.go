package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/KaramelBytes/basketloom-cli/internal/table"
)

// basketFlags are the analysis flags shared by analyze and analyze-batch.
// Unchanged flags keep the configured defaults.
type basketFlags struct {
	column      string
	separator   string
	minProducts int
	minSupport  int
	topTriplets int
	maxItems    int
	delimiter   string
	maxRows     int
	sheetName   string
	sheetIndex  int
}

func (f *basketFlags) register(cmd *cobra.Command) {
	d := basket.DefaultConfig()
	fl := cmd.Flags()
	fl.StringVarP(&f.column, "column", "c", "", "column holding the items of each transaction (required)")
	fl.StringVar(&f.separator, "separator", d.Separator, "item separator inside a transaction cell")
	fl.IntVar(&f.minProducts, "min-products", d.MinItems, "minimum distinct items for a transaction to count")
	fl.IntVar(&f.minSupport, "min-support", d.MinSupportPercent, "minimum support percent (1-100) for reported pairs")
	fl.IntVar(&f.topTriplets, "top-triplets", d.TopTriplets, "number of triplets to report (0 = all)")
	fl.IntVar(&f.maxItems, "max-items", d.MaxItems, "drop transactions with more distinct items (0 = unlimited)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	fl.IntVar(&f.maxRows, "max-rows", table.DefaultOptions().MaxRows, "maximum rows to process (0 = unlimited)")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	_ = cmd.MarkFlagRequired("column")
}

// analysisConfig overlays changed flags on base.
func (f *basketFlags) analysisConfig(cmd *cobra.Command, base basket.Config) (basket.Config, error) {
	fl := cmd.Flags()
	c := base.WithColumn(f.column)
	if fl.Changed("separator") {
		c.Separator = f.separator
	}
	if fl.Changed("min-products") {
		c.MinItems = f.minProducts
	}
	if fl.Changed("min-support") {
		c.MinSupportPercent = f.minSupport
	}
	if fl.Changed("top-triplets") {
		c.TopTriplets = f.topTriplets
	}
	if fl.Changed("max-items") {
		c.MaxItems = f.maxItems
	}
	if c.TransactionColumn == "" {
		return c, fmt.Errorf("--column is required")
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (f *basketFlags) tableOptions() (table.Options, error) {
	opt := table.DefaultOptions()
	opt.MaxRows = f.maxRows
	opt.SheetName = strings.TrimSpace(f.sheetName)
	opt.SheetIndex = f.sheetIndex
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}
