package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore keeps records in the analysis_history table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "basketloom.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS analysis_history (
		id TEXT PRIMARY KEY,
		dataset TEXT NOT NULL,
		column_name TEXT NOT NULL,
		analysis_type TEXT NOT NULL,
		parameters TEXT NOT NULL,
		total_transactions INTEGER NOT NULL,
		unique_items INTEGER NOT NULL,
		pair_count INTEGER NOT NULL,
		result BLOB,
		created_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create analysis_history table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Save inserts r.
func (s *SQLiteStore) Save(ctx context.Context, r *Record) error {
	params, err := json.Marshal(r.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	var result []byte
	if r.Result != nil {
		if result, err = json.Marshal(r.Result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO analysis_history
		(id, dataset, column_name, analysis_type, parameters, total_transactions, unique_items, pair_count, result, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Dataset, r.Column, r.AnalysisType, string(params),
		r.TotalTransactions, r.UniqueItems, r.PairCount, result, r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", r.ID, err)
	}
	return nil
}

// Get loads the full record including its result.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, dataset, column_name, analysis_type, parameters,
		total_transactions, unique_items, pair_count, created_at, result
		FROM analysis_history WHERE id = ?`, id)
	var result []byte
	r, err := scanRecord(row.Scan, &result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &r.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	return r, nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, dataset, column_name, analysis_type, parameters,
		total_transactions, unique_items, pair_count, created_at
		FROM analysis_history ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []*Record{}
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

func scanRecord(scan func(dest ...any) error, extra ...any) (*Record, error) {
	var (
		r      Record
		params string
		nanos  int64
	)
	dest := []any{&r.ID, &r.Dataset, &r.Column, &r.AnalysisType, &params,
		&r.TotalTransactions, &r.UniqueItems, &r.PairCount, &nanos}
	if err := scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &r.Parameters); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	r.CreatedAt = time.Unix(0, nanos).UTC()
	return &r, nil
}
