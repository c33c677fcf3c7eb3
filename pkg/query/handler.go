package query

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/httpx"
	"github.com/homewatt/homewatt/pkg/storage"
)

// Handler serves the dashboard's read endpoints.
type Handler struct {
	engine *Engine
	store  storage.Store
}

// NewHandler creates a query handler.
func NewHandler(store storage.Store, clk clock.Clock) *Handler {
	return &Handler{engine: NewEngine(store, clk), store: store}
}

// averageRow matches the single-row aggregate shape the dashboard consumes.
type averageRow struct {
	AverageCurrent *float64 `json:"average_current"`
}

type minimumRow struct {
	MinCurrent *float64 `json:"min_current"`
}

// HandleAll serves GET /all: every raw device row.
func (h *Handler) HandleAll(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListAllDeviceRows(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list all device rows")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if rows == nil {
		rows = []storage.DeviceReading{}
	}
	httpx.RespondJSON(w, http.StatusOK, rows)
}

// HandleAvgCurrentToday serves GET /avg-current-today?device=.
func (h *Handler) HandleAvgCurrentToday(w http.ResponseWriter, r *http.Request) {
	device := r.URL.Query().Get("device")
	if device == "" {
		httpx.RespondError(w, http.StatusBadRequest, "Device parameter is required")
		return
	}

	avg, err := h.engine.AvgCurrentToday(r.Context(), device)
	if err != nil {
		log.Error().Err(err).Str("device", device).Msg("average current today")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, []averageRow{{AverageCurrent: avg}})
}

// HandleMinCurrentToday serves GET /min-current-today?device=.
func (h *Handler) HandleMinCurrentToday(w http.ResponseWriter, r *http.Request) {
	device := r.URL.Query().Get("device")
	if device == "" {
		httpx.RespondError(w, http.StatusBadRequest, "Device parameter is required")
		return
	}

	min, err := h.engine.MinCurrentToday(r.Context(), device)
	if err != nil {
		log.Error().Err(err).Str("device", device).Msg("min current today")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, []minimumRow{{MinCurrent: min}})
}

// HandleConsumption serves GET /consumption?device=&range=.
func (h *Handler) HandleConsumption(w http.ResponseWriter, r *http.Request) {
	device := r.URL.Query().Get("device")
	rangeParam := r.URL.Query().Get("range")
	if device == "" || rangeParam == "" {
		httpx.RespondError(w, http.StatusBadRequest, "Missing device or range parameter")
		return
	}

	rng, err := ParseRange(rangeParam)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid range parameter")
		return
	}

	points, err := h.engine.DeviceConsumption(r.Context(), device, rng)
	if err != nil {
		log.Error().Err(err).Str("device", device).Str("range", rangeParam).Msg("device consumption")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, points)
}

// HandleSolarConsumption serves GET /consumptionSolarPanel?range=.
func (h *Handler) HandleSolarConsumption(w http.ResponseWriter, r *http.Request) {
	rangeParam := r.URL.Query().Get("range")
	if rangeParam == "" {
		httpx.RespondError(w, http.StatusBadRequest, "Missing range parameter")
		return
	}

	rng, err := ParseRange(rangeParam)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid range parameter")
		return
	}

	points, err := h.engine.SolarConsumption(r.Context(), rng)
	if err != nil {
		log.Error().Err(err).Str("range", rangeParam).Msg("solar consumption")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, points)
}
