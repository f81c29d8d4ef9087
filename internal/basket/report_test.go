package basket

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"strings"
	"testing"
)

var ecommerceRows = []string{
	"Laptop,Mouse,Keyboard",
	"Monitor,HDMI Cable",
	"Laptop,Keyboard",
	"Mouse,USB Hub,Keyboard",
	"Monitor,Keyboard",
	"Laptop,Mouse,Monitor",
	"HDMI Cable,USB Hub",
	"Laptop,Mouse,Keyboard",
	"Monitor,Mouse",
	"USB Hub,Keyboard",
}

func TestWriteAssociationsCSV(t *testing.T) {
	res := analyzeStrings(t, "Laptop,Mouse", "Mouse,Keyboard", "Laptop,Keyboard", "Monitor,Mouse")
	var buf bytes.Buffer
	if err := WriteAssociationsCSV(&buf, res.Associations); err != nil {
		t.Fatalf("WriteAssociationsCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if strings.Join(rows[0], "|") != "Product A|Product B|Times Bought Together|Support %|Confidence A→B|Confidence B→A|Lift" {
		t.Fatalf("header = %v", rows[0])
	}
	// Laptop+Mouse: support 25%, conf 50% / 33.33%, lift 0.67
	var lm []string
	for _, r := range rows[1:] {
		if r[0] == "Laptop" && r[1] == "Mouse" {
			lm = r
		}
	}
	if strings.Join(lm, "|") != "Laptop|Mouse|1|25.00|50.00|33.33|0.67" {
		t.Fatalf("Laptop/Mouse row = %v", lm)
	}
}

func TestWriteFrequencyAndTripletsCSV(t *testing.T) {
	res := analyzeStrings(t, ecommerceRows...)
	var buf bytes.Buffer
	if err := WriteFrequencyCSV(&buf, res.ItemFrequency); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Product,Purchase Count" || lines[1] != "Keyboard,6" {
		t.Fatalf("frequency csv = %q", lines[:2])
	}
	buf.Reset()
	if err := WriteTripletsCSV(&buf, res.Triplets); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Products,Co-occurrence,Support %\nKeyboard + Laptop + Mouse,2,20.00\n") {
		t.Fatalf("triplet csv = %q", buf.String())
	}
}

func TestReportMarkdown(t *testing.T) {
	cfg := DefaultConfig().WithColumn("products")
	cfg.MinSupportPercent = 25
	col := append(Cells(ecommerceRows...), Null(), Text("Solo"))
	res, err := Analyze(context.Background(), col, cfg)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	rep := NewReport("sales.csv", res, DefaultReportOptions())
	md := rep.Markdown()
	for _, want := range []string{
		"[MARKET BASKET SUMMARY]",
		"File: sales.csv",
		"Column: products",
		"Transactions: 10 (of 12 rows)",
		"Unique products: 6",
		"[TOP ASSOCIATIONS]",
		"- Keyboard + Laptop: 3 together; support 30.00%",
		"[TOP TRIPLETS]",
		"[MOST PURCHASED]",
		"- Keyboard: 6",
		"[INSIGHTS]",
		"Top pair: 'Keyboard' + 'Laptop' (bought together 3x)",
		"[WARNINGS]",
		"1 rows skipped: missing value",
		"1 rows skipped: fewer than 2 items",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	// ceil(10*25/100) = 3
	for _, a := range rep.Filtered {
		if a.Cooccurrence < 3 {
			t.Fatalf("filtered record below floor: %+v", a)
		}
	}
	if len(rep.Filtered) != 3 {
		t.Fatalf("filtered = %d, want 3", len(rep.Filtered))
	}
}

func TestReportDisplayLimitAndEmpty(t *testing.T) {
	res := analyzeStrings(t, ecommerceRows...)
	rep := NewReport("", res, ReportOptions{DisplayLimit: 2})
	if len(rep.Displayed()) != 2 {
		t.Fatalf("displayed = %d", len(rep.Displayed()))
	}
	if !strings.Contains(rep.Markdown(), "more)") {
		t.Fatalf("expected overflow marker")
	}

	res.Config.MinSupportPercent = 100
	empty := NewReport("", res, DefaultReportOptions())
	if len(empty.Filtered) != 0 || empty.Insight.TopPair != nil {
		t.Fatalf("expected nothing at 100%%: %+v", empty.Filtered)
	}
	if !strings.Contains(empty.Markdown(), "(none)") {
		t.Fatalf("expected (none) marker")
	}
}

func TestInsights(t *testing.T) {
	in := Insights(nil)
	if in.PairCount != 0 || in.TopPair != nil || len(in.Messages) != 0 {
		t.Fatalf("empty insight = %+v", in)
	}
	recs := []AssociationRecord{{ItemA: "a", ItemB: "b", Cooccurrence: 4, Lift: 1.5}, {ItemA: "a", ItemB: "c", Cooccurrence: 2}}
	in = Insights(recs)
	if in.TopPair == nil || in.TopPair.ItemB != "b" || in.AvgCooccurrence != 3 {
		t.Fatalf("insight = %+v", in)
	}
	if len(in.Messages) != 4 {
		t.Fatalf("messages = %v", in.Messages)
	}
}

func TestBuildNetwork(t *testing.T) {
	recs := []AssociationRecord{
		{ItemA: "a", ItemB: "b", Cooccurrence: 3},
		{ItemA: "b", ItemB: "c", Cooccurrence: 2},
		{ItemA: "c", ItemB: "d", Cooccurrence: 1},
	}
	g := BuildNetwork(recs, 2)
	if len(g.Edges) != 2 || len(g.Nodes) != 3 {
		t.Fatalf("graph = %+v", g)
	}
	if g.Nodes[0].ID != "a" || g.Nodes[1].ID != "b" || g.Nodes[2].ID != "c" {
		t.Fatalf("node order = %+v", g.Nodes)
	}
	for _, n := range g.Nodes {
		if r := math.Hypot(n.X, n.Y); math.Abs(r-1) > 1e-9 {
			t.Fatalf("node %s off the unit circle: %v", n.ID, r)
		}
	}
	if g.Edges[0].Weight != 3 {
		t.Fatalf("edge = %+v", g.Edges[0])
	}
	if e := BuildNetwork(nil, 10); e.Nodes == nil || e.Edges == nil {
		t.Fatalf("empty network should have non-nil slices")
	}
}
