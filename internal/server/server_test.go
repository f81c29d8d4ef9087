package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/basketloom-cli/internal/archive"
	"github.com/KaramelBytes/basketloom-cli/internal/cache"
	"github.com/KaramelBytes/basketloom-cli/internal/config"
	"github.com/KaramelBytes/basketloom-cli/internal/logging"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const groceries = "order,items\n1,\"Bread,Milk\"\n2,\"Bread,Milk,Eggs\"\n3,\"Milk,Eggs\"\n4,\"Bread,Butter\"\n"

func testConfig() *config.Global {
	return &config.Global{
		Separator:         ",",
		MinProducts:       2,
		MinSupportPercent: 5,
		TopTriplets:       20,
		MaxItems:          50,
		DisplayLimit:      50,
		NetworkTopN:       20,
		FrequencyTopN:     25,
		ServerEnvironment: "test",
		AllowedOrigins:    []string{"http://localhost:*"},
		RequestTimeoutSec: 5,
	}
}

type harness struct {
	srv    *Server
	router *gin.Engine
	parses *cache.ParseCache
}

func newHarness(t *testing.T, cfg *config.Global, withArchive bool) *harness {
	t.Helper()
	parses, err := cache.New(16)
	require.NoError(t, err)
	var store archive.Store
	if withArchive {
		fs, err := archive.NewFileStore(t.TempDir())
		require.NoError(t, err)
		store = fs
	}
	srv := New(cfg, store, parses, logging.Discard(), "test")
	return &harness{srv: srv, router: srv.Router(), parses: parses}
}

func (h *harness) do(t *testing.T, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) upload(t *testing.T, body string) string {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/v1/datasets?name=groceries.csv", "text/csv", []byte(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v datasetView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	w := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "basketloom", body["service"])
}

func TestUploadAndAnalyze(t *testing.T) {
	h := newHarness(t, testConfig(), true)
	id := h.upload(t, groceries)

	w := h.do(t, http.MethodGet, "/api/v1/datasets", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = h.do(t, http.MethodPost, "/api/v1/datasets/"+id+"/associations", "application/json", []byte(`{"column":"items"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK())
	assert.Equal(t, 4, resp.TotalTransactions)
	require.NotEmpty(t, resp.Filtered)
	assert.Equal(t, "Bread", resp.Filtered[0].ItemA)
	assert.Equal(t, "Milk", resp.Filtered[0].ItemB)
	assert.Equal(t, 2, resp.Filtered[0].Cooccurrence)
	assert.NotNil(t, resp.Insight.TopPair)
	assert.NotEmpty(t, resp.Network.Nodes)
	require.NotEmpty(t, resp.AnalysisID)
	assert.Equal(t, 1, h.parses.Len())

	w = h.do(t, http.MethodGet, "/api/v1/analyses", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resp.AnalysisID)

	w = h.do(t, http.MethodGet, "/api/v1/analyses/"+resp.AnalysisID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec archive.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "groceries.csv", rec.Dataset)
	assert.Equal(t, "items", rec.Column)
	require.NotNil(t, rec.Result)
}

func TestAnalyzeErrors(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	id := h.upload(t, groceries)
	single := h.upload(t, "items\nBread\nMilk\n")

	tests := []struct {
		name   string
		id     string
		body   string
		status int
		kind   string
		field  string
	}{
		{"missing column", id, `{"column":"sku"}`, http.StatusBadRequest, "invalid_configuration", "transaction_column"},
		{"no column given", id, `{}`, http.StatusBadRequest, "invalid_configuration", "transaction_column"},
		{"support out of range", id, `{"column":"items","min_support_percent":0}`, http.StatusBadRequest, "invalid_configuration", "min_support_percent"},
		{"single item rows", single, `{"column":"items"}`, http.StatusUnprocessableEntity, "insufficient_data", ""},
		{"unknown dataset", "nope", `{"column":"items"}`, http.StatusNotFound, "not_found", ""},
		{"malformed json", id, `{"column":`, http.StatusBadRequest, "bad_request", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/api/v1/datasets/"+tt.id+"/associations", "application/json", []byte(tt.body))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, tt.kind, body["error_kind"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalysesWithoutArchive(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	w := h.do(t, http.MethodGet, "/api/v1/analyses", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	id := h.upload(t, groceries)

	w := h.do(t, http.MethodGet, "/api/v1/datasets/"+id+"/associations.csv?column=items", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "market_basket_associations.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Product A,Product B,Times Bought Together"))
	assert.True(t, strings.HasPrefix(lines[1], "Bread,Milk,2,50.00"), lines[1])

	w = h.do(t, http.MethodGet, "/api/v1/datasets/"+id+"/associations.csv?column=items&kind=frequency", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bread,3")

	w = h.do(t, http.MethodGet, "/api/v1/datasets/"+id+"/associations.csv?column=items&kind=pie", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDatasetInvalidatesCache(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	id := h.upload(t, groceries)
	w := h.do(t, http.MethodPost, "/api/v1/datasets/"+id+"/associations", "application/json", []byte(`{"column":"items"}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, h.parses.Len())

	w = h.do(t, http.MethodDelete, "/api/v1/datasets/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, h.parses.Len())

	w = h.do(t, http.MethodDelete, "/api/v1/datasets/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMultipartUpload(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "baskets.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(groceries))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := h.do(t, http.MethodPost, "/api/v1/datasets", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v datasetView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "baskets.csv", v.Name)
	assert.Equal(t, 4, v.Rows)
	assert.Equal(t, []string{"order", "items"}, v.Columns)
}

func TestUploadRejectsUnsupportedName(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	w := h.do(t, http.MethodPost, "/api/v1/datasets?name=report.pdf", "application/pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
