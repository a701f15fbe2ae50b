package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"evreserve/internal/models"
)

// MemoryStore is the in-process RecordStore. All entities are deep
// copied on the way in and out so callers never share memory with the
// store.
type MemoryStore struct {
	mu       sync.RWMutex
	stations map[string]*models.Station
	sessions map[string]*models.Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stations: make(map[string]*models.Station),
		sessions: make(map[string]*models.Session),
	}
}

// GetStation returns a copy of the station or ErrNotFound.
func (m *MemoryStore) GetStation(_ context.Context, stationID string) (*models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	station, ok := m.stations[stationID]
	if !ok {
		return nil, fmt.Errorf("station %q: %w", stationID, ErrNotFound)
	}
	return station.Clone(), nil
}

// ListStations returns copies of all stations ordered by id.
func (m *MemoryStore) ListStations(_ context.Context) ([]*models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Station, 0, len(m.stations))
	for _, station := range m.stations {
		out = append(out, station.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertStation stores a copy of the station.
func (m *MemoryStore) UpsertStation(_ context.Context, station *models.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[station.ID] = station.Clone()
	return nil
}

// GetSession returns a copy of the session or ErrNotFound.
func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	return session.Clone(), nil
}

// UpsertSession stores a copy of the session.
func (m *MemoryStore) UpsertSession(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session.Clone()
	return nil
}

// ListSessionsByUser returns the user's sessions, optionally filtered by
// status, ordered by creation time.
func (m *MemoryStore) ListSessionsByUser(_ context.Context, userID string, statuses ...models.SessionStatus) ([]*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Session
	for _, session := range m.sessions {
		if session.UserID == userID && statusMatch(session.Status, statuses) {
			out = append(out, session.Clone())
		}
	}
	sortSessions(out)
	return out, nil
}

// ListSessionsByConnector returns sessions referencing the given
// connector, optionally filtered by status.
func (m *MemoryStore) ListSessionsByConnector(_ context.Context, stationID, connectorID string, statuses ...models.SessionStatus) ([]*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Session
	for _, session := range m.sessions {
		if session.StationID == stationID && session.ConnectorID == connectorID && statusMatch(session.Status, statuses) {
			out = append(out, session.Clone())
		}
	}
	sortSessions(out)
	return out, nil
}

// ListSessionsByStatus returns all sessions in the given status.
func (m *MemoryStore) ListSessionsByStatus(_ context.Context, status models.SessionStatus) ([]*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Session
	for _, session := range m.sessions {
		if session.Status == status {
			out = append(out, session.Clone())
		}
	}
	sortSessions(out)
	return out, nil
}

func sortSessions(sessions []*models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}
