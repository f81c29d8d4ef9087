package server

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/basketloom-cli/internal/table"
)

const maxUploadBytes = 32 << 20

// dataset is an uploaded table held in memory.
type dataset struct {
	ID         string
	Table      *table.Table
	UploadedAt time.Time
}

type datasetView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	Truncated  bool      `json:"truncated,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (d *dataset) view() datasetView {
	return datasetView{
		ID:         d.ID,
		Name:       d.Table.Name,
		Rows:       d.Table.Len(),
		Columns:    d.Table.Header,
		Truncated:  d.Table.Truncated,
		UploadedAt: d.UploadedAt,
	}
}

type registry struct {
	mu   sync.RWMutex
	byID map[string]*dataset
}

func newRegistry() *registry {
	return &registry{byID: make(map[string]*dataset)}
}

func (r *registry) add(t *table.Table) *dataset {
	d := &dataset{ID: uuid.NewString(), Table: t, UploadedAt: time.Now().UTC()}
	r.mu.Lock()
	r.byID[d.ID] = d
	r.mu.Unlock()
	return d
}

func (r *registry) get(id string) (*dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	return true
}

func (r *registry) list() []*dataset {
	r.mu.RLock()
	out := make([]*dataset, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UploadDataset accepts a multipart "file" field or a raw CSV body.
func (s *Server) UploadDataset(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	name := strings.TrimSpace(c.Query("name"))
	opt := table.DefaultOptions()

	var (
		tbl *table.Table
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			writeError(c, http.StatusBadRequest, "missing multipart field 'file'", kindBadRequest, "file")
			return
		}
		if name == "" {
			name = fh.Filename
		}
		f, oerr := fh.Open()
		if oerr != nil {
			writeError(c, http.StatusBadRequest, oerr.Error(), kindBadRequest, "file")
			return
		}
		defer f.Close()
		tbl, err = table.Read(f, name, opt)
	} else {
		if name == "" {
			name = "upload.csv"
		}
		tbl, err = table.Read(c.Request.Body, name, opt)
	}
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), kindBadRequest, "file")
		return
	}
	if len(tbl.Header) == 0 {
		writeError(c, http.StatusBadRequest, "dataset is empty", kindBadRequest, "file")
		return
	}
	d := s.datasets.add(tbl)
	s.log.WithFields(logrus.Fields{"dataset_id": d.ID, "name": tbl.Name, "rows": tbl.Len()}).Info("dataset uploaded")
	c.JSON(http.StatusCreated, d.view())
}

// ListDatasets returns uploaded datasets in upload order.
func (s *Server) ListDatasets(c *gin.Context) {
	all := s.datasets.list()
	out := make([]datasetView, 0, len(all))
	for _, d := range all {
		out = append(out, d.view())
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out})
}

// GetDataset returns one dataset summary.
func (s *Server) GetDataset(c *gin.Context) {
	d, ok := s.datasets.get(c.Param("id"))
	if !ok {
		writeNotFound(c, "dataset")
		return
	}
	c.JSON(http.StatusOK, d.view())
}

// DeleteDataset drops a dataset and its cached parses.
func (s *Server) DeleteDataset(c *gin.Context) {
	id := c.Param("id")
	if !s.datasets.remove(id) {
		writeNotFound(c, "dataset")
		return
	}
	if s.parses != nil {
		s.parses.InvalidateDataset(id)
	}
	c.Status(http.StatusNoContent)
}
