package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_OutputDirAndSkips(t *testing.T) {
	home := isolateHome(t)

	// Two files with the same basename in different directories, plus one with no usable rows
	writeFile(t, filepath.Join(home, "d1", "orders.csv"), groceries)
	writeFile(t, filepath.Join(home, "d2", "orders.csv"), groceries)
	writeFile(t, filepath.Join(home, "d3", "orders.csv"), "items\nBread\n")
	outDir := filepath.Join(home, "reports")

	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "orders.csv"), "--column", "items", "--output-dir", outDir, "--no-archive")
	for _, want := range []string{"[1/3] Processing orders.csv...", "[3/3] Processing orders.csv...", "✓ Analyzed 2/3 files"} {
		if !strings.Contains(out, want) {
			t.Fatalf("progress missing %q:\n%s", want, out)
		}
	}
	for _, name := range []string{"orders.basket.md", "orders__2.basket.md"} {
		body, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("missing report %s: %v", name, err)
		}
		if !strings.Contains(string(body), "[TOP ASSOCIATIONS]") {
			t.Fatalf("%s has no associations:\n%s", name, body)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "orders__3.basket.md")); err == nil {
		t.Fatalf("skipped file should not produce a report")
	}
}

func TestAnalyzeBatch_Quiet(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, filepath.Join(home, "a.csv"), groceries)
	out := runCmd(t, "analyze-batch", filepath.Join(home, "a.csv"), "-c", "items", "--quiet", "--no-archive")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("quiet run printed:\n%s", out)
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := isolateHome(t)
	if _, _, err := execCmd(t, "analyze-batch", filepath.Join(home, "none*.csv"), "-c", "items"); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}
