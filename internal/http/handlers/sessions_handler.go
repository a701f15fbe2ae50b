package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evreserve/internal/engine"
	"evreserve/internal/http/middleware"
)

// SessionsHandler serves reservation and lifecycle endpoints.
type SessionsHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewSessionsHandler builds the handler set.
func NewSessionsHandler(eng *engine.Engine, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{engine: eng, logger: logger}
}

type reserveRequest struct {
	StationID       string    `json:"station_id"`
	ConnectorID     string    `json:"connector_id"`
	UserID          string    `json:"user_id"`
	StartTime       time.Time `json:"start_time"`
	ExpectedEndTime time.Time `json:"expected_end_time"`
}

// Reserve handles POST /api/v1/sessions.
func (h *SessionsHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.StationID == "" || req.ConnectorID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "station_id, connector_id and user_id are required")
		return
	}

	session, err := h.engine.Reserve(r.Context(), engine.ReserveInput{
		StationID:       req.StationID,
		ConnectorID:     req.ConnectorID,
		UserID:          req.UserID,
		StartTime:       req.StartTime,
		ExpectedEndTime: req.ExpectedEndTime,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// ListByUser handles GET /api/v1/sessions/user/{user_id}.
func (h *SessionsHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	h.listFor(w, r, userID)
}

// Me handles GET /api/v1/sessions/me using the authenticated identity.
func (h *SessionsHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	h.listFor(w, r, userID)
}

func (h *SessionsHandler) listFor(w http.ResponseWriter, r *http.Request, userID string) {
	sessions, err := h.engine.ListUserSessions(r.Context(), userID)
	if err != nil {
		h.logger.Error("list user sessions failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Start handles PUT /api/v1/sessions/{session_id}/start.
func (h *SessionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	session, err := h.engine.Start(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type endRequest struct {
	KWhConsumed float64 `json:"kwh_consumed"`
	Cost        float64 `json:"cost"`
}

// End handles PUT /api/v1/sessions/{session_id}/end. The usage body is
// optional; absent fields default to zero.
func (h *SessionsHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	session, err := h.engine.End(r.Context(), sessionID, req.KWhConsumed, req.Cost)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Cancel handles DELETE /api/v1/sessions/{session_id}.
func (h *SessionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if err := h.engine.Cancel(r.Context(), sessionID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
