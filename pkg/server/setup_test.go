package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/compaction"
	"github.com/homewatt/homewatt/pkg/ingest"
	"github.com/homewatt/homewatt/pkg/query"
	"github.com/homewatt/homewatt/pkg/storage/memory"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.New()
	clk := clock.Fixed{Instant: time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)}
	hub := ingest.NewHub()
	compactor := compaction.New(store, false)

	return NewRouter(
		ingest.NewHandler(store, hub),
		query.NewHandler(store, clk),
		compaction.NewHandler(compactor),
		hub,
	)
}

func TestRouter_IngestThenQuery(t *testing.T) {
	router := testRouter(t)

	post := httptest.NewRequest(http.MethodPost, "/mcu-reading",
		strings.NewReader(`{"device":"ESP1","current":100,"reading_date":"2025-06-20T08:00:00","time":8}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, post)
	require.Equal(t, http.StatusOK, rr.Code)

	get := httptest.NewRequest(http.MethodGet, "/avg-current-today?device=ESP1", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, get)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[{"average_current":100}]`, rr.Body.String())
}

func TestRouter_Health(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/consumption", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/mcu-reading", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
