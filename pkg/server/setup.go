package server

import (
	"net/http"
	"os"
	"time"

	gorilla "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/homewatt/homewatt/pkg/compaction"
	"github.com/homewatt/homewatt/pkg/httpx"
	"github.com/homewatt/homewatt/pkg/ingest"
	"github.com/homewatt/homewatt/pkg/query"
)

var startTime = time.Now()

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.RespondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(startTime).String(),
	})
}

// NewRouter assembles the full HTTP surface: ingestion, queries, the
// end-of-day triggers, the live websocket feed and a health probe.
func NewRouter(
	ingestHandler *ingest.Handler,
	queryHandler *query.Handler,
	compactionHandler *compaction.Handler,
	hub *ingest.Hub,
) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/all", queryHandler.HandleAll).Methods(http.MethodGet)
	router.HandleFunc("/avg-current-today", queryHandler.HandleAvgCurrentToday).Methods(http.MethodGet)
	router.HandleFunc("/min-current-today", queryHandler.HandleMinCurrentToday).Methods(http.MethodGet)
	router.HandleFunc("/consumption", queryHandler.HandleConsumption).Methods(http.MethodGet)
	router.HandleFunc("/consumptionSolarPanel", queryHandler.HandleSolarConsumption).Methods(http.MethodGet)

	router.HandleFunc("/mcu-reading", ingestHandler.HandleDeviceReading).Methods(http.MethodPost)
	router.HandleFunc("/solar-panel-reading", ingestHandler.HandleSolarReading).Methods(http.MethodPost)

	router.HandleFunc("/end-of-day-solar-panel", compactionHandler.HandleSolar).Methods(http.MethodPost)
	router.HandleFunc("/end-of-day-mcu", compactionHandler.HandleDevices).Methods(http.MethodPost)

	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/live", hub.HandleWS).Methods(http.MethodGet)

	// Readings come from microcontrollers and a dashboard served from
	// elsewhere, so the API is origin-open.
	cors := gorilla.CORS(
		gorilla.AllowedOrigins([]string{"*"}),
		gorilla.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorilla.AllowedHeaders([]string{"Content-Type"}),
	)

	return gorilla.LoggingHandler(os.Stdout, cors(router))
}
