package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghcn-dashboard/internal/config"
	"ghcn-dashboard/internal/modules/climate/repository"
	"ghcn-dashboard/internal/modules/climate/types"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func catalogWith(n int) *repository.Catalog {
	var tables []types.Table
	for i := 0; i < n; i++ {
		tables = append(tables, types.Table{
			Station: types.Station{ID: string(rune('A' + i)), Name: string(rune('a' + i))},
			Records: []types.DailyRecord{{Year: 2000, DayOfYear: 1}},
		})
	}
	return repository.NewCatalog(tables)
}

func getHealth(t *testing.T, mux *http.ServeMux) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body healthResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		catalog    *repository.Catalog
		archive    Pinger
		wantStatus int
		want       healthResponse
	}{
		{
			name:       "archive disabled",
			catalog:    catalogWith(2),
			wantStatus: http.StatusOK,
			want:       healthResponse{Status: "ok", Stations: 2, Archive: "disabled"},
		},
		{
			name:       "archive reachable",
			catalog:    catalogWith(1),
			archive:    fakePinger{},
			wantStatus: http.StatusOK,
			want:       healthResponse{Status: "ok", Stations: 1, Archive: "ok"},
		},
		{
			name:       "no stations",
			catalog:    catalogWith(0),
			wantStatus: http.StatusOK,
			want:       healthResponse{Status: "degraded", Stations: 0, Archive: "disabled"},
		},
		{
			name:       "archive down",
			catalog:    catalogWith(1),
			archive:    fakePinger{err: errors.New("database is locked")},
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := getHealth(t, NewMux(tt.catalog, tt.archive))
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.want, body)
			} else {
				assert.Contains(t, rec.Body.String(), "failed to check archive connectivity")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("oversized replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Len(t, seen, 36)
	})
}

func TestRequestLogger_RecordsStatus(t *testing.T) {
	var recorded *statusRecorder
	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded = w.(*statusRecorder)
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, recorded)
	assert.Equal(t, http.StatusTeapot, recorded.status)
}

func TestServer_CompressesLargeResponses(t *testing.T) {
	mux := NewMux(catalogWith(1), nil)
	payload := strings.Repeat("temperature ", 1000)
	mux.HandleFunc("GET /big", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, payload)
	})

	srv := NewServer(config.Config{HTTPAddr: ":0"}, mux)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/big", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	// An explicit Accept-Encoding keeps the transport from decompressing.
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(body))
}
