package basket

import (
	"fmt"
	"math"
)

// Insight summarizes the strongest filtered association for display.
type Insight struct {
	TopPair         *AssociationRecord `json:"top_pair,omitempty"`
	PairCount       int                `json:"pair_count"`
	AvgCooccurrence float64            `json:"avg_cooccurrence"`
	Messages        []string           `json:"messages"`
}

// Insights derives headline findings from ranked, filtered records.
func Insights(filtered []AssociationRecord) Insight {
	in := Insight{PairCount: len(filtered), Messages: []string{}}
	if len(filtered) == 0 {
		return in
	}
	top := filtered[0]
	in.TopPair = &top
	sum := 0
	for _, r := range filtered {
		sum += r.Cooccurrence
	}
	in.AvgCooccurrence = float64(sum) / float64(len(filtered))
	in.Messages = append(in.Messages,
		fmt.Sprintf("Top pair: '%s' + '%s' (bought together %dx)", top.ItemA, top.ItemB, top.Cooccurrence),
		"Bundle opportunity: create a bundle with these products to increase sales",
		fmt.Sprintf("Average co-occurrence: %.1f times", in.AvgCooccurrence),
	)
	if top.Lift > 1 {
		in.Messages = append(in.Messages, fmt.Sprintf("Lift %.2f: bought together more often than chance", top.Lift))
	}
	return in
}

// Node is one item in the association network.
type Node struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Edge links two items weighted by co-occurrence.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Network is a renderer-agnostic graph of the top associations.
type Network struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildNetwork takes the first topN records and lays their items on a unit
// circle in first-appearance order.
func BuildNetwork(recs []AssociationRecord, topN int) Network {
	g := Network{Nodes: []Node{}, Edges: []Edge{}}
	if topN > 0 && len(recs) > topN {
		recs = recs[:topN]
	}
	var ids []string
	seen := map[string]bool{}
	for _, r := range recs {
		for _, id := range []string{r.ItemA, r.ItemB} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		g.Edges = append(g.Edges, Edge{Source: r.ItemA, Target: r.ItemB, Weight: r.Cooccurrence})
	}
	for i, id := range ids {
		angle := 2 * math.Pi * float64(i) / float64(len(ids))
		g.Nodes = append(g.Nodes, Node{ID: id, X: math.Cos(angle), Y: math.Sin(angle)})
	}
	return g
}
