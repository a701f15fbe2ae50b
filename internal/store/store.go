package store

import (
	"context"
	"errors"

	"evreserve/internal/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// RecordStore abstracts persistence of stations and sessions so the
// in-memory backend can be swapped for Postgres without touching the
// engine.
type RecordStore interface {
	GetStation(ctx context.Context, stationID string) (*models.Station, error)
	ListStations(ctx context.Context) ([]*models.Station, error)
	UpsertStation(ctx context.Context, station *models.Station) error

	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	UpsertSession(ctx context.Context, session *models.Session) error
	ListSessionsByUser(ctx context.Context, userID string, statuses ...models.SessionStatus) ([]*models.Session, error)
	ListSessionsByConnector(ctx context.Context, stationID, connectorID string, statuses ...models.SessionStatus) ([]*models.Session, error)
	ListSessionsByStatus(ctx context.Context, status models.SessionStatus) ([]*models.Session, error)
}

func statusMatch(status models.SessionStatus, filter []models.SessionStatus) bool {
	if len(filter) == 0 {
		return true
	}
	for _, want := range filter {
		if status == want {
			return true
		}
	}
	return false
}
