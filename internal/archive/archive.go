// Package archive keeps a history of completed analyses.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/google/uuid"
)

// AnalysisType tags every record written by this tool.
const AnalysisType = "market_basket"

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("analysis not found")

// Record is one archived analysis run.
type Record struct {
	ID                string         `json:"id"`
	Dataset           string         `json:"dataset"`
	Column            string         `json:"column"`
	AnalysisType      string         `json:"analysis_type"`
	Parameters        basket.Config  `json:"parameters"`
	TotalTransactions int            `json:"total_transactions"`
	UniqueItems       int            `json:"unique_item_count"`
	PairCount         int            `json:"pair_count"`
	Result            *basket.Result `json:"result,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// NewRecord summarizes res for the archive. PairCount counts the pairs that
// pass the support threshold.
func NewRecord(dataset string, res *basket.Result) *Record {
	return &Record{
		ID:                uuid.NewString(),
		Dataset:           dataset,
		Column:            res.Config.TransactionColumn,
		AnalysisType:      AnalysisType,
		Parameters:        res.Config,
		TotalTransactions: res.TotalTransactions,
		UniqueItems:       res.UniqueItems,
		PairCount:         len(res.Filtered()),
		Result:            res,
		CreatedAt:         time.Now().UTC(),
	}
}

// Store persists records. List returns the newest records first and leaves
// Result nil; use Get for the full payload.
type Store interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}

// Open returns the store for backend. The "none" backend yields a nil Store.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "sqlite":
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "file":
		s, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown archive backend: %s", backend)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
