// Package ingest accepts sensor pushes and appends them to the store.
// Ingestion is stateless: no rate limiting, no deduplication, two identical
// pushes produce two rows.
package ingest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/httpx"
	"github.com/homewatt/homewatt/pkg/storage"
)

// Handler handles reading ingestion.
type Handler struct {
	store storage.Store
	hub   *Hub // optional; nil disables live broadcasting
}

// NewHandler creates an ingest handler.
func NewHandler(store storage.Store, hub *Hub) *Handler {
	return &Handler{store: store, hub: hub}
}

// DeviceRequest is the MCU push payload. Pointers distinguish a missing
// field from a legitimate zero reading.
type DeviceRequest struct {
	Device      string   `json:"device"`
	Current     *float64 `json:"current"`
	ReadingDate string   `json:"reading_date"`
	Time        int64    `json:"time"`
}

// SolarRequest is the solar panel push payload.
type SolarRequest struct {
	Power     *float64 `json:"power"`
	Timestamp string   `json:"timestamp"`
	Time      int64    `json:"time"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleDeviceReading serves POST /mcu-reading.
func (h *Handler) HandleDeviceReading(w http.ResponseWriter, r *http.Request) {
	var req DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Device == "" || req.Current == nil || req.ReadingDate == "" {
		httpx.RespondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	// The date component is the local calendar day; a trailing time part
	// on the payload is ignored.
	day, err := clock.ParseDate(req.ReadingDate)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid reading_date")
		return
	}

	row := storage.DeviceReading{
		ReadingDate: day,
		Device:      req.Device,
		Current:     *req.Current,
		TS:          storage.Seq(req.Time),
	}
	if err := h.store.AppendDeviceReading(r.Context(), row); err != nil {
		log.Error().Err(err).Str("device", req.Device).Msg("store device reading")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.broadcast("device_reading", row)
	httpx.RespondJSON(w, http.StatusOK, messageResponse{Message: "MCU reading stored successfully"})
}

// HandleSolarReading serves POST /solar-panel-reading. Energy is recorded
// equal to power: readings arrive hourly, so each one contributes its power
// over a one-hour window.
func (h *Handler) HandleSolarReading(w http.ResponseWriter, r *http.Request) {
	var req SolarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Power == nil || req.Timestamp == "" {
		httpx.RespondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	day, err := clock.ParseDate(req.Timestamp)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid timestamp")
		return
	}

	row := storage.SolarReading{
		ReadingDate: day,
		Power:       *req.Power,
		Energy:      *req.Power,
		TS:          storage.Seq(req.Time),
	}
	if err := h.store.AppendSolarReading(r.Context(), row); err != nil {
		log.Error().Err(err).Msg("store solar reading")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.broadcast("solar_reading", row)
	httpx.RespondJSON(w, http.StatusOK, messageResponse{Message: "Solar panel reading stored successfully"})
}

func (h *Handler) broadcast(kind string, payload any) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(map[string]any{"type": kind, "reading": payload})
}
