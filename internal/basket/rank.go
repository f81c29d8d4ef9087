package basket

import "sort"

// ItemCount is a (item, count) row of the frequency ranking.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// Rank orders records by co-occurrence descending, then by (ItemA, ItemB).
// The slice is sorted in place and returned.
func Rank(recs []AssociationRecord) []AssociationRecord {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Cooccurrence != b.Cooccurrence {
			return a.Cooccurrence > b.Cooccurrence
		}
		if a.ItemA != b.ItemA {
			return a.ItemA < b.ItemA
		}
		return a.ItemB < b.ItemB
	})
	return recs
}

// RankTriplets orders triplets by co-occurrence descending, then lexicographically.
func RankTriplets(ts []TripletRecord) []TripletRecord {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if a.Cooccurrence != b.Cooccurrence {
			return a.Cooccurrence > b.Cooccurrence
		}
		for n := 0; n < 3; n++ {
			if a.Items[n] != b.Items[n] {
				return a.Items[n] < b.Items[n]
			}
		}
		return false
	})
	return ts
}

// MinSupportCount converts a percent threshold into a co-occurrence floor:
// ceil(total*pct/100), never below 1.
func MinSupportCount(total, pct int) int {
	n := (total*pct + 99) / 100
	if n < 1 {
		return 1
	}
	return n
}

// FilterBySupport keeps records whose co-occurrence reaches MinSupportCount.
// Order is preserved; the input is not modified.
func FilterBySupport(recs []AssociationRecord, total, pct int) []AssociationRecord {
	floor := MinSupportCount(total, pct)
	out := make([]AssociationRecord, 0, len(recs))
	for _, r := range recs {
		if r.Cooccurrence >= floor {
			out = append(out, r)
		}
	}
	return out
}

// TopItems ranks items by count descending, ties by first appearance.
// n <= 0 returns every item.
func (c *Counts) TopItems(n int) []ItemCount {
	out := make([]ItemCount, 0, len(c.order))
	for _, item := range c.order {
		out = append(out, ItemCount{Item: item, Count: c.Items[item]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
