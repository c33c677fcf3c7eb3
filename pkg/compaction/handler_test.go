package compaction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homewatt/homewatt/pkg/storage"
	"github.com/homewatt/homewatt/pkg/storage/memory"
)

func TestHandleSolar(t *testing.T) {
	store := memory.New()
	day := date(t, "2025-06-19")
	seedSolarDay(t, store, day, 1, 2, 3, 2, 1)

	handler := NewHandler(New(store, false))
	req := httptest.NewRequest(http.MethodPost, "/end-of-day-solar-panel",
		strings.NewReader(`{"date":"2025-06-19"}`))
	rr := httptest.NewRecorder()
	handler.HandleSolar(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Message     string  `json:"message"`
		TotalEnergy float64 `json:"totalEnergy"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Message)
	require.Equal(t, 9.0, resp.TotalEnergy)
}

func TestHandleSolar_TwiceLeavesOneSummary(t *testing.T) {
	store := memory.New()
	day := date(t, "2025-06-19")
	seedSolarDay(t, store, day, 1, 2, 3, 2, 1)

	handler := NewHandler(New(store, false))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/end-of-day-solar-panel",
			strings.NewReader(`{"date":"2025-06-19"}`))
		rr := httptest.NewRecorder()
		handler.HandleSolar(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rows, err := store.ListSolarRows(context.Background(), storage.DateOn(day))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestHandleDevices(t *testing.T) {
	store := memory.New()
	day := date(t, "2025-06-19")
	seedDeviceDay(t, store, day, "ESP1", 100, 140)

	handler := NewHandler(New(store, false))
	req := httptest.NewRequest(http.MethodPost, "/end-of-day-mcu",
		strings.NewReader(`{"date":"2025-06-19"}`))
	rr := httptest.NewRecorder()
	handler.HandleDevices(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	rows, err := store.ListDeviceRows(context.Background(), "ESP1", storage.DateOn(day))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 10.0, rows[0].Current)
}

func TestHandlers_BadRequests(t *testing.T) {
	handler := NewHandler(New(memory.New(), false))

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"date":`},
		{"missing date", `{}`},
		{"malformed date", `{"date":"not-a-date"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/end-of-day-solar-panel", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler.HandleSolar(rr, req)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Contains(t, rr.Body.String(), "error")
		})
	}
}
