package compaction

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/httpx"
)

// Handler exposes the end-of-day endpoints. They exist so compaction can
// be triggered manually (backfills, testing); normal operation drives the
// compactor from the midnight scheduler.
type Handler struct {
	compactor *Compactor
}

func NewHandler(c *Compactor) *Handler {
	return &Handler{compactor: c}
}

type dayRequest struct {
	Date string `json:"date"`
}

type solarResult struct {
	Message     string  `json:"message"`
	TotalEnergy float64 `json:"totalEnergy"`
}

// HandleSolar serves POST /end-of-day-solar-panel.
func (h *Handler) HandleSolar(w http.ResponseWriter, r *http.Request) {
	day, ok := decodeDay(w, r)
	if !ok {
		return
	}

	total, err := h.compactor.CompactSolar(r.Context(), day)
	if err != nil {
		log.Error().Err(err).Str("date", day.String()).Msg("solar compaction")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, solarResult{
		Message:     "Total energy stored and hourly data cleaned up",
		TotalEnergy: total,
	})
}

// HandleDevices serves POST /end-of-day-mcu.
func (h *Handler) HandleDevices(w http.ResponseWriter, r *http.Request) {
	day, ok := decodeDay(w, r)
	if !ok {
		return
	}

	if err := h.compactor.CompactDevices(r.Context(), day); err != nil {
		log.Error().Err(err).Str("date", day.String()).Msg("device compaction")
		httpx.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Device readings compacted",
	})
}

func decodeDay(w http.ResponseWriter, r *http.Request) (clock.Date, bool) {
	var req dayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid JSON body")
		return clock.Date{}, false
	}
	if req.Date == "" {
		httpx.RespondError(w, http.StatusBadRequest, "Missing required fields")
		return clock.Date{}, false
	}
	day, err := clock.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid date")
		return clock.Date{}, false
	}
	return day, true
}
