package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/ethpandaops/reportoor/pkg/indexstore"
)

func newTestServer(t *testing.T, store indexstore.Store) (*server, string) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	dir := t.TempDir()

	cfg := &config.APIConfig{
		Listen: "127.0.0.1:0",
	}

	s := &server{
		log:        log,
		cfg:        cfg,
		outputsDir: dir,
		indexStore: store,
	}

	return s, dir
}

func newTestStore(t *testing.T) indexstore.Store {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	store := indexstore.NewStore(log, &config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, store.Start(context.Background()))

	t.Cleanup(func() { _ = store.Stop() })

	return store
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	router := s.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestFileServing(t *testing.T) {
	s, dir := newTestServer(t, nil)

	content := []byte(`{"tests_a::test_x": "passed"}`)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "test_summary.json"), content, 0o644))

	router := s.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/files/test_summary.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestWorkflowEndpointsWithoutStore(t *testing.T) {
	s, _ := newTestServer(t, nil)
	router := s.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// No index store configured, so the route is not registered.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListWorkflows(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpsertWorkflow(context.Background(),
		&indexstore.Workflow{
			WorkflowID:   "wf-list",
			TestsTotal:   10,
			TestsFailed:  2,
			FailureCount: 2,
		}))

	s, _ := newTestServer(t, store)
	router := s.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []workflowResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "wf-list", body.Items[0].WorkflowID)
	assert.Equal(t, 2, body.Items[0].FailureCount)
}

func TestGetWorkflow(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpsertWorkflow(context.Background(),
		&indexstore.Workflow{
			WorkflowID: "wf-get",
			TestsTotal: 5,
		}))

	s, _ := newTestServer(t, store)
	router := s.buildRouter()

	tests := []struct {
		name       string
		workflowID string
		wantStatus int
	}{
		{
			name:       "existing workflow",
			workflowID: "wf-get",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing workflow",
			workflowID: "nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet,
				"/api/v1/workflows/"+tt.workflowID, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.cfg.RateLimit.Enabled = true
	s.cfg.RateLimit.RequestsPerMinute = 2

	router := s.buildRouter()

	codes := make([]int, 0, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusOK,
		http.StatusTooManyRequests,
	}, codes)
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name string
		xff  string
		addr string
		want string
	}{
		{
			name: "remote addr",
			addr: "192.168.1.1:5000",
			want: "192.168.1.1",
		},
		{
			name: "forwarded single",
			xff:  "203.0.113.7",
			addr: "10.0.0.1:5000",
			want: "203.0.113.7",
		},
		{
			name: "forwarded chain",
			xff:  "203.0.113.7, 10.0.0.2",
			addr: "10.0.0.1:5000",
			want: "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.addr

			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			assert.Equal(t, tt.want, extractIP(req))
		})
	}
}
