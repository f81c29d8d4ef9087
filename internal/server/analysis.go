package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/basketloom-cli/internal/archive"
	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/KaramelBytes/basketloom-cli/internal/cache"
)

// analyzeRequest overlays the configured defaults. Absent fields keep them.
type analyzeRequest struct {
	Column            *string `json:"column" form:"column"`
	Separator         *string `json:"separator" form:"separator"`
	MinProducts       *int    `json:"min_products" form:"min_products"`
	MinSupportPercent *int    `json:"min_support_percent" form:"min_support_percent"`
	TopTriplets       *int    `json:"top_triplets" form:"top_triplets"`
	MaxItems          *int    `json:"max_items_per_transaction" form:"max_items_per_transaction"`
}

func (r analyzeRequest) apply(cfg basket.Config) basket.Config {
	if r.Column != nil {
		cfg.TransactionColumn = *r.Column
	}
	if r.Separator != nil {
		cfg.Separator = *r.Separator
	}
	if r.MinProducts != nil {
		cfg.MinItems = *r.MinProducts
	}
	if r.MinSupportPercent != nil {
		cfg.MinSupportPercent = *r.MinSupportPercent
	}
	if r.TopTriplets != nil {
		cfg.TopTriplets = *r.TopTriplets
	}
	if r.MaxItems != nil {
		cfg.MaxItems = *r.MaxItems
	}
	return cfg
}

type analyzeResponse struct {
	AnalysisID string `json:"analysis_id,omitempty"`
	DatasetID  string `json:"dataset_id"`
	basket.Outcome
	Filtered []basket.AssociationRecord `json:"filtered_associations"`
	Insight  basket.Insight             `json:"insights"`
	Network  basket.Network             `json:"network"`
	Warnings []string                   `json:"warnings"`
}

// analyze runs the pipeline on a registered dataset, reusing cached parses.
func (s *Server) analyze(ctx context.Context, d *dataset, cfg basket.Config) (*basket.Result, error) {
	if strings.TrimSpace(cfg.TransactionColumn) == "" {
		return nil, &basket.ConfigError{Field: "transaction_column", Value: cfg.TransactionColumn, Reason: "is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := cache.KeyFor(d.ID, cfg)
	entry := s.log.WithFields(logrus.Fields{"dataset_id": d.ID, "column": cfg.TransactionColumn})
	if s.parses != nil {
		if e, ok := s.parses.Get(key); ok {
			entry.Debug("parse cache hit")
			return basket.AnalyzeTransactions(ctx, e.Transactions, e.Stats, cfg)
		}
	}
	entry.Debug("parse cache miss")
	col, err := d.Table.Column(cfg.TransactionColumn)
	if err != nil {
		return nil, err
	}
	txs, st := basket.ParseTransactions(col, cfg)
	if s.parses != nil {
		s.parses.Put(key, txs, st)
	}
	return basket.AnalyzeTransactions(ctx, txs, st, cfg)
}

func (s *Server) bindRequest(c *gin.Context) (*dataset, basket.Config, bool) {
	d, ok := s.datasets.get(c.Param("id"))
	if !ok {
		writeNotFound(c, "dataset")
		return nil, basket.Config{}, false
	}
	var req analyzeRequest
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&req)
	} else if c.Request.ContentLength != 0 {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), kindBadRequest, "")
		return nil, basket.Config{}, false
	}
	return d, req.apply(s.cfg.AnalysisConfig()), true
}

// AnalyzeDataset mines associations and archives the run when a store is set.
func (s *Server) AnalyzeDataset(c *gin.Context) {
	d, cfg, ok := s.bindRequest(c)
	if !ok {
		return
	}
	res, err := s.analyze(c.Request.Context(), d, cfg)
	if err != nil {
		s.log.WithFields(logrus.Fields{"dataset_id": d.ID, "column": cfg.TransactionColumn}).WithError(err).Warn("analysis failed")
		writeAnalysisError(c, err)
		return
	}
	rep := basket.NewReport(d.Table.Name, res, s.cfg.ReportOptions())
	resp := analyzeResponse{
		DatasetID: d.ID,
		Outcome:   basket.NewOutcome(res, nil),
		Filtered:  rep.Filtered,
		Insight:   rep.Insight,
		Network:   rep.Network,
		Warnings:  rep.Warnings,
	}
	if resp.Filtered == nil {
		resp.Filtered = []basket.AssociationRecord{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if s.store != nil {
		rec := archive.NewRecord(d.Table.Name, res)
		if err := s.store.Save(c.Request.Context(), rec); err != nil {
			s.log.WithError(err).Warn("archive analysis failed")
		} else {
			resp.AnalysisID = rec.ID
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ExportCSV streams filtered associations, item frequency or triplets as CSV.
// The table is chosen by ?kind=associations|frequency|triplets.
func (s *Server) ExportCSV(c *gin.Context) {
	d, cfg, ok := s.bindRequest(c)
	if !ok {
		return
	}
	kind := c.DefaultQuery("kind", "associations")
	var write func(res *basket.Result) error
	switch kind {
	case "associations":
		write = func(res *basket.Result) error { return basket.WriteAssociationsCSV(c.Writer, res.Filtered()) }
	case "frequency":
		write = func(res *basket.Result) error { return basket.WriteFrequencyCSV(c.Writer, res.ItemFrequency) }
	case "triplets":
		write = func(res *basket.Result) error { return basket.WriteTripletsCSV(c.Writer, res.Triplets) }
	default:
		writeError(c, http.StatusBadRequest, "kind must be associations, frequency or triplets", kindBadRequest, "kind")
		return
	}
	res, err := s.analyze(c.Request.Context(), d, cfg)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	filename := fmt.Sprintf("market_basket_%s.csv", kind)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := write(res); err != nil {
		s.log.WithError(err).Warn("write csv failed")
	}
}

// ListAnalyses returns archived runs, newest first.
func (s *Server) ListAnalyses(c *gin.Context) {
	if s.store == nil {
		writeNotFound(c, "archive")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		writeError(c, http.StatusBadRequest, "limit must be a non-negative integer", kindBadRequest, "limit")
		return
	}
	recs, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, basket.NewOutcome(nil, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": recs})
}

// GetAnalysis returns one archived run including its result.
func (s *Server) GetAnalysis(c *gin.Context) {
	if s.store == nil {
		writeNotFound(c, "archive")
		return
	}
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, archive.ErrNotFound) {
		writeNotFound(c, "analysis")
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, basket.NewOutcome(nil, err))
		return
	}
	c.JSON(http.StatusOK, rec)
}
