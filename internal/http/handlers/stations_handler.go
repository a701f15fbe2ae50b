package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evreserve/internal/engine"
)

// StationsHandler serves the station inventory.
type StationsHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewStationsHandler builds the handler set.
func NewStationsHandler(eng *engine.Engine, logger *zap.Logger) *StationsHandler {
	return &StationsHandler{engine: eng, logger: logger}
}

// List handles GET /api/v1/stations.
func (h *StationsHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.engine.ListStations(r.Context())
	if err != nil {
		h.logger.Error("list stations failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list stations")
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// Get handles GET /api/v1/stations/{station_id}.
func (h *StationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "station_id")
	station, err := h.engine.GetStation(r.Context(), stationID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}
