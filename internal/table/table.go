package table

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
)

// ErrColumnNotFound is returned by Column when no header matches.
var ErrColumnNotFound = errors.New("column not found")

// ErrUnsupportedFormat indicates no loader accepts the file extension.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Options controls table loading.
type Options struct {
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet; SheetIndex (1-based) is used when empty.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable loading defaults.
func DefaultOptions() Options {
	return Options{MaxRows: 100000, SheetIndex: 1}
}

// Table is a parsed dataset: a header and rows of nullable cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]basket.Cell
	// Truncated is true when MaxRows stopped reading early.
	Truncated bool
}

// nullMarkers are values read as missing, matching common spreadsheet exports.
var nullMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "null": {}, "NULL": {}, "<NA>": {}, "#N/A": {},
}

// cellOf converts a raw field into a cell, mapping null markers to missing.
func cellOf(raw string) basket.Cell {
	if _, ok := nullMarkers[strings.TrimSpace(raw)]; ok {
		return basket.Null()
	}
	return basket.Text(raw)
}

// FromRecords builds a table from raw string records. Short rows are padded
// with missing cells.
func FromRecords(name string, header []string, records [][]string) *Table {
	t := &Table{Name: name, Header: make([]string, len(header))}
	for i, h := range header {
		t.Header[i] = strings.TrimSpace(h)
	}
	for _, rec := range records {
		t.appendRecord(rec)
	}
	return t
}

func (t *Table) appendRecord(rec []string) {
	row := make([]basket.Cell, len(t.Header))
	for j := range row {
		if j < len(rec) {
			row[j] = cellOf(rec[j])
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the named column. Matching is case-insensitive and ignores
// surrounding whitespace.
func (t *Table) Column(name string) ([]basket.Cell, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	idx := -1
	for i, h := range t.Header {
		if strings.ToLower(h) == want {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q in %s (available: %s)", ErrColumnNotFound, name, t.Name, strings.Join(t.Header, ", "))
	}
	out := make([]basket.Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Loader reads one family of table files, from disk or from a stream.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*Table, error)
	Read(r io.Reader, name string, opt Options) (*Table, error)
}

var registry []Loader

// Register adds a loader to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load selects a loader based on filename.
func Load(path string, opt Options) (*Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Read selects a loader based on name and reads the table from r.
func Read(r io.Reader, name string, opt Options) (*Table, error) {
	for _, l := range registry {
		if l.CanLoad(name) {
			return l.Read(r, name, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
