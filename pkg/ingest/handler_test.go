package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/storage"
	"github.com/homewatt/homewatt/pkg/storage/memory"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) clock.Date {
	t.Helper()
	d, err := clock.ParseDate(s)
	require.NoError(t, err)
	return d
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestHandleDeviceReading(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store, nil)

	rr := postJSON(t, handler.HandleDeviceReading, "/mcu-reading",
		`{"device":"fridge","current":2.5,"reading_date":"2025-06-20T14:00:00","time":3}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"MCU reading stored successfully"}`, rr.Body.String())

	rows, err := store.ListDeviceRows(context.Background(), "fridge", storage.DateOn(mustDate(t, "2025-06-20")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "fridge", rows[0].Device)
	require.Equal(t, 2.5, rows[0].Current)
	require.Equal(t, storage.Seq(3), rows[0].TS)
}

func TestHandleDeviceReading_ZeroCurrent(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store, nil)

	rr := postJSON(t, handler.HandleDeviceReading, "/mcu-reading",
		`{"device":"fridge","current":0,"reading_date":"2025-06-20","time":1}`)

	require.Equal(t, http.StatusOK, rr.Code)
	rows, err := store.ListDeviceRows(context.Background(), "fridge", storage.DateOn(mustDate(t, "2025-06-20")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 0.0, rows[0].Current)
}

func TestHandleDeviceReading_BadRequests(t *testing.T) {
	handler := NewHandler(memory.New(), nil)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"device":`},
		{"missing device", `{"current":2.5,"reading_date":"2025-06-20","time":1}`},
		{"missing current", `{"device":"fridge","reading_date":"2025-06-20","time":1}`},
		{"missing date", `{"device":"fridge","current":2.5,"time":1}`},
		{"malformed date", `{"device":"fridge","current":2.5,"reading_date":"yesterday","time":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, handler.HandleDeviceReading, "/mcu-reading", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Contains(t, rr.Body.String(), "error")
		})
	}
}

func TestHandleSolarReading(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store, nil)

	rr := postJSON(t, handler.HandleSolarReading, "/solar-panel-reading",
		`{"power":3.2,"timestamp":"2025-06-20T09:00:00","time":9}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"Solar panel reading stored successfully"}`, rr.Body.String())

	rows, err := store.ListSolarRows(context.Background(), storage.DateOn(mustDate(t, "2025-06-20")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 3.2, rows[0].Power)
	require.Equal(t, 3.2, rows[0].Energy)
}

func TestHandleSolarReading_BadRequests(t *testing.T) {
	handler := NewHandler(memory.New(), nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing power", `{"timestamp":"2025-06-20","time":1}`},
		{"missing timestamp", `{"power":3.2,"time":1}`},
		{"malformed timestamp", `{"power":3.2,"timestamp":"junk","time":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, handler.HandleSolarReading, "/solar-panel-reading", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}
