package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"evreserve/internal/engine"
	httpserver "evreserve/internal/http"
	"evreserve/internal/http/handlers"
	"evreserve/internal/inventory"
	"evreserve/internal/ledger"
	"evreserve/internal/models"
	"evreserve/internal/store"
)

const testSecret = "test-secret"

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	st := store.NewMemoryStore()
	logger := zap.NewNop()
	inv := inventory.New(st, logger)
	if err := inv.Seed(context.Background(), inventory.DefaultStations()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	eng := engine.New(inv, ledger.New(st), nil, nil, logger)

	return httpserver.NewRouter(httpserver.RouterDeps{
		Stations:  handlers.NewStationsHandler(eng, logger),
		Sessions:  handlers.NewSessionsHandler(eng, logger),
		Health:    handlers.NewHealthHandler(),
		JWTSecret: testSecret,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func reserveBody(connectorID, userID string, start, end time.Time) map[string]interface{} {
	return map[string]interface{}{
		"station_id":        "STN-001",
		"connector_id":      connectorID,
		"user_id":           userID,
		"start_time":        start.Format(time.RFC3339),
		"expected_end_time": end.Format(time.RFC3339),
	}
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) models.Session {
	t.Helper()
	var session models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session
}

func TestListAndGetStations(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/stations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stations []models.Station
	if err := json.Unmarshal(rec.Body.Bytes(), &stations); err != nil {
		t.Fatalf("decode stations: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stations/STN-001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stations/STN-404", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReserveEndpoint(t *testing.T) {
	router := testRouter(t)
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions", reserveBody("C-001-1", "user-1", start, end))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	session := decodeSession(t, rec)
	if session.Status != models.SessionReserved {
		t.Fatalf("expected reserved, got %s", session.Status)
	}

	// Overlapping window on the same connector conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions",
		reserveBody("C-001-1", "user-2", start.Add(30*time.Minute), end.Add(30*time.Minute)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	// Window in the past is rejected up front.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions",
		reserveBody("C-001-2", "user-2", time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	// Unknown connector.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions",
		reserveBody("C-404", "user-2", start, end))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	// Missing fields.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLifecycleEndpoints(t *testing.T) {
	router := testRouter(t)
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions", reserveBody("C-001-1", "user-1", start, end))
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve: expected 201, got %d", rec.Code)
	}
	session := decodeSession(t, rec)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/sessions/%s/start", session.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeSession(t, rec); got.Status != models.SessionInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}

	// Double start violates the lifecycle.
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/sessions/%s/start", session.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("double start: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/sessions/%s/end", session.ID),
		map[string]interface{}{"kwh_consumed": 12.5, "cost": 4.30})
	if rec.Code != http.StatusOK {
		t.Fatalf("end: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	completed := decodeSession(t, rec)
	if completed.Status != models.SessionCompleted || completed.KWhConsumed != 12.5 {
		t.Fatalf("unexpected completion: status=%s kwh=%v", completed.Status, completed.KWhConsumed)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/sessions/missing/start", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	router := testRouter(t)
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions", reserveBody("C-001-1", "user-1", start, end))
	session := decodeSession(t, rec)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+session.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+session.ID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second cancel: expected 400, got %d", rec.Code)
	}
}

func TestListUserSessionsEndpoint(t *testing.T) {
	router := testRouter(t)
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	doJSON(t, router, http.MethodPost, "/api/v1/sessions", reserveBody("C-001-1", "user-1", start, end))
	doJSON(t, router, http.MethodPost, "/api/v1/sessions", reserveBody("C-001-2", "user-2", start, end))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/sessions/user/user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var sessions []models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sessions) != 1 || sessions[0].UserID != "user-1" {
		t.Fatalf("expected one session for user-1, got %d", len(sessions))
	}
}

func TestSessionsMeRequiresToken(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-1"})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}
