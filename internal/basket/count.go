package basket

import "context"

// Counts holds the co-occurrence tallies of one analysis.
type Counts struct {
	Transactions int
	Items        map[string]int
	Pairs        map[PairKey]int
	Triplets     map[TripletKey]int
	// order lists items by first appearance for stable frequency ranking.
	order []string
	// itemSlots is the total number of item occurrences, for averages.
	itemSlots int
}

// Count tallies item, pair and triplet frequencies in a single pass.
// It fails with *InsufficientDataError when fewer than MinTransactions remain.
func Count(ctx context.Context, txs []Transaction) (*Counts, error) {
	if len(txs) < MinTransactions {
		return nil, &InsufficientDataError{Valid: len(txs), Required: MinTransactions}
	}
	c := &Counts{
		Transactions: len(txs),
		Items:        make(map[string]int),
		Pairs:        make(map[PairKey]int),
		Triplets:     make(map[TripletKey]int),
	}
	for n, tx := range txs {
		// O(n^3) per row; check the deadline every so often.
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		c.add(tx)
	}
	return c, nil
}

func (c *Counts) add(tx Transaction) {
	c.itemSlots += len(tx)
	for _, item := range tx {
		if _, ok := c.Items[item]; !ok {
			c.order = append(c.order, item)
		}
		c.Items[item]++
	}
	for i := 0; i < len(tx); i++ {
		for j := i + 1; j < len(tx); j++ {
			c.Pairs[NewPairKey(tx[i], tx[j])]++
			for k := j + 1; k < len(tx); k++ {
				c.Triplets[NewTripletKey(tx[i], tx[j], tx[k])]++
			}
		}
	}
}

// UniqueItems is the number of distinct item names.
func (c *Counts) UniqueItems() int { return len(c.Items) }

// AvgItemsPerTransaction is the mean transaction length over counted rows.
func (c *Counts) AvgItemsPerTransaction() float64 {
	return ratio(c.itemSlots, c.Transactions)
}
