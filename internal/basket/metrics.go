package basket

// AssociationRecord describes one observed item pair.
type AssociationRecord struct {
	ItemA          string  `json:"item_a"`
	ItemB          string  `json:"item_b"`
	Cooccurrence   int     `json:"cooccurrence"`
	Support        float64 `json:"support"`
	ConfidenceAToB float64 `json:"confidence_a_to_b"`
	ConfidenceBToA float64 `json:"confidence_b_to_a"`
	Lift           float64 `json:"lift"`
}

// TripletRecord describes one observed item triple. Only support is defined.
type TripletRecord struct {
	Items        [3]string `json:"items"`
	Cooccurrence int       `json:"cooccurrence"`
	Support      float64   `json:"support"`
}

// Label joins the triple as "A + B + C".
func (t TripletRecord) Label() string {
	return t.Items[0] + " + " + t.Items[1] + " + " + t.Items[2]
}

// ComputeMetrics derives support, both confidences and lift for every pair.
// The result is unordered; pass it through Rank for presentation.
func ComputeMetrics(itemFreq map[string]int, pairs map[PairKey]int, total int) []AssociationRecord {
	out := make([]AssociationRecord, 0, len(pairs))
	for k, n := range pairs {
		fa, fb := itemFreq[k.A], itemFreq[k.B]
		out = append(out, AssociationRecord{
			ItemA:          k.A,
			ItemB:          k.B,
			Cooccurrence:   n,
			Support:        ratio(n, total),
			ConfidenceAToB: ratio(n, fa),
			ConfidenceBToA: ratio(n, fb),
			Lift:           lift(n, fa, fb, total),
		})
	}
	return out
}

// ComputeTriplets returns the topK triplets by co-occurrence with their support.
// topK <= 0 returns every triplet.
func ComputeTriplets(triplets map[TripletKey]int, total, topK int) []TripletRecord {
	out := make([]TripletRecord, 0, len(triplets))
	for k, n := range triplets {
		out = append(out, TripletRecord{Items: k.Items(), Cooccurrence: n, Support: ratio(n, total)})
	}
	RankTriplets(out)
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// lift = c*N / (fa*fb). Zero frequencies yield 0 rather than Inf/NaN.
func lift(c, fa, fb, total int) float64 {
	den := float64(fa) * float64(fb)
	if den == 0 {
		return 0
	}
	return float64(c) * float64(total) / den
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
