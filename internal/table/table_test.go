package table

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadCSVColumn(t *testing.T) {
	p := writeFile(t, "sales.csv", strings.Join([]string{
		"transaction_id,Products,date",
		`1,"Laptop,Mouse",2024-01-01`,
		"2,NA,2024-01-02",
		"3,,2024-01-03",
		"4",
	}, "\n"))
	tbl, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Name != "sales.csv" || tbl.Len() != 4 {
		t.Fatalf("table = %s rows=%d", tbl.Name, tbl.Len())
	}
	col, err := tbl.Column("  products ")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if !col[0].Valid || col[0].Value != "Laptop,Mouse" {
		t.Fatalf("row 1 = %+v", col[0])
	}
	if col[1].Valid {
		t.Fatalf("NA should be null: %+v", col[1])
	}
	if !col[2].Valid || col[2].Value != "" {
		t.Fatalf("empty field should be present and empty: %+v", col[2])
	}
	if col[3].Valid {
		t.Fatalf("short row should pad with null: %+v", col[3])
	}
}

func TestColumnNotFound(t *testing.T) {
	tbl := FromRecords("mem", []string{"a", "b"}, [][]string{{"1", "2"}})
	_, err := tbl.Column("items")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "available: a, b") {
		t.Fatalf("error should list columns: %v", err)
	}
}

func TestLoadTSVAndMaxRows(t *testing.T) {
	p := writeFile(t, "basket.tsv", "items\tstore\nBread,Milk\tA\nEggs,Milk\tB\nTea,Milk\tC\n")
	opt := DefaultOptions()
	opt.MaxRows = 2
	tbl, err := Load(p, opt)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 || !tbl.Truncated {
		t.Fatalf("rows=%d truncated=%v", tbl.Len(), tbl.Truncated)
	}
	col, _ := tbl.Column("items")
	if col[1].Value != "Eggs,Milk" {
		t.Fatalf("tab delimited parse = %+v", col)
	}
}

func TestLoadEmptyAndUnsupported(t *testing.T) {
	p := writeFile(t, "empty.csv", "")
	tbl, err := Load(p, DefaultOptions())
	if err != nil || tbl.Len() != 0 {
		t.Fatalf("empty: tbl=%+v err=%v", tbl, err)
	}
	if _, err := Load(writeFile(t, "doc.pdf", "x"), DefaultOptions()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	if _, err := f.NewSheet("Orders"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	cells := map[string]string{
		"A1": "id", "B1": "Items",
		"A2": "1", "B2": "Bread|Milk",
		"A3": "2", "B3": "Milk|Butter",
		"A4": "3",
	}
	for ref, v := range cells {
		if err := f.SetCellValue("Orders", ref, v); err != nil {
			t.Fatalf("set %s: %v", ref, err)
		}
	}
	p := filepath.Join(t.TempDir(), "orders.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	opt := DefaultOptions()
	opt.SheetName = "orders"
	tbl, err := Load(p, opt)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	col, err := tbl.Column("items")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if len(col) != 3 || col[0].Value != "Bread|Milk" || col[2].Valid {
		t.Fatalf("col = %+v", col)
	}

	opt.SheetName = "missing"
	if _, err := Load(p, opt); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("expected sheet listing error, got %v", err)
	}
	opt.SheetName = ""
	opt.SheetIndex = 9
	if _, err := Load(p, opt); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestReadStream(t *testing.T) {
	tbl, err := Read(strings.NewReader("items\nBread,Milk\n"), "upload.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	col, err := tbl.Column("items")
	if err != nil || col[0].Value != "Bread,Milk" {
		t.Fatalf("col = %+v err=%v", col, err)
	}
	if _, err := Read(strings.NewReader("x"), "notes.docx", DefaultOptions()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}
