package basket

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// FormatPercent renders a fraction as a two-decimal percent, e.g. "12.34%".
func FormatPercent(x float64) string { return fmt.Sprintf("%.2f%%", x*100) }

// FormatLift renders lift with two decimals.
func FormatLift(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) }

// percentNumber is the CSV form of a percent: the number without the sign.
func percentNumber(x float64) string { return strconv.FormatFloat(x*100, 'f', 2, 64) }

var associationHeader = []string{
	"Product A", "Product B", "Times Bought Together",
	"Support %", "Confidence A→B", "Confidence B→A", "Lift",
}

// WriteAssociationsCSV writes the flattened download projection of records.
func WriteAssociationsCSV(w io.Writer, recs []AssociationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(associationHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range recs {
		row := []string{
			r.ItemA, r.ItemB, strconv.Itoa(r.Cooccurrence),
			percentNumber(r.Support), percentNumber(r.ConfidenceAToB), percentNumber(r.ConfidenceBToA),
			FormatLift(r.Lift),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFrequencyCSV writes the two-column item frequency table.
func WriteFrequencyCSV(w io.Writer, items []ItemCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Product", "Purchase Count"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		if err := cw.Write([]string{it.Item, strconv.Itoa(it.Count)}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTripletsCSV writes the triplet table.
func WriteTripletsCSV(w io.Writer, ts []TripletRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Products", "Co-occurrence", "Support %"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range ts {
		if err := cw.Write([]string{t.Label(), strconv.Itoa(t.Cooccurrence), percentNumber(t.Support)}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
