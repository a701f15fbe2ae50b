package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"evreserve/internal/models"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore is the pgx-backed RecordStore. Connectors are kept as a
// jsonb column on the station row since they are owned exclusively by
// their station and always read together.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps an existing connection.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Connect opens a pgx pool for the DSN and validates it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return pool, nil
}

const stationColumns = `id, name, lat, lon, address, owner, is_public, overall_status, connectors`

// GetStation loads one station.
func (s *PostgresStore) GetStation(ctx context.Context, stationID string) (*models.Station, error) {
	query := fmt.Sprintf(`SELECT %s FROM stations WHERE id = $1`, stationColumns)
	station, err := scanStation(s.db.QueryRow(ctx, query, stationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("station %q: %w", stationID, ErrNotFound)
		}
		return nil, err
	}
	return station, nil
}

// ListStations loads all stations ordered by id.
func (s *PostgresStore) ListStations(ctx context.Context) ([]*models.Station, error) {
	query := fmt.Sprintf(`SELECT %s FROM stations ORDER BY id`, stationColumns)
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, station)
	}
	return out, rows.Err()
}

// UpsertStation inserts or replaces a station row.
func (s *PostgresStore) UpsertStation(ctx context.Context, station *models.Station) error {
	connectors, err := json.Marshal(station.Connectors)
	if err != nil {
		return fmt.Errorf("store: encode connectors: %w", err)
	}
	const query = `
		INSERT INTO stations (id, name, lat, lon, address, owner, is_public, overall_status, connectors, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			address = EXCLUDED.address,
			owner = EXCLUDED.owner,
			is_public = EXCLUDED.is_public,
			overall_status = EXCLUDED.overall_status,
			connectors = EXCLUDED.connectors,
			updated_at = NOW()
	`
	_, err = s.db.Exec(ctx, query,
		station.ID,
		station.Name,
		station.Location.Lat,
		station.Location.Lon,
		station.Address,
		station.Owner,
		station.Public,
		string(station.Status),
		connectors,
	)
	return err
}

const sessionColumns = `id, station_id, connector_id, user_id, start_time, expected_end_time, actual_end_time, kwh_consumed, cost, status, created_at, updated_at`

// GetSession loads one session.
func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	session, err := scanSession(s.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
		}
		return nil, err
	}
	return session, nil
}

// UpsertSession inserts or replaces a session row.
func (s *PostgresStore) UpsertSession(ctx context.Context, session *models.Session) error {
	const query = `
		INSERT INTO sessions (id, station_id, connector_id, user_id, start_time, expected_end_time, actual_end_time, kwh_consumed, cost, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			expected_end_time = EXCLUDED.expected_end_time,
			actual_end_time = EXCLUDED.actual_end_time,
			kwh_consumed = EXCLUDED.kwh_consumed,
			cost = EXCLUDED.cost,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.Exec(ctx, query,
		session.ID,
		session.StationID,
		session.ConnectorID,
		session.UserID,
		session.StartTime,
		session.ExpectedEndTime,
		session.ActualEndTime,
		session.KWhConsumed,
		session.Cost,
		string(session.Status),
		session.CreatedAt,
		session.UpdatedAt,
	)
	return err
}

// ListSessionsByUser returns the user's sessions, optionally filtered by
// status.
func (s *PostgresStore) ListSessionsByUser(ctx context.Context, userID string, statuses ...models.SessionStatus) ([]*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE user_id = $1 AND status = ANY($2) ORDER BY created_at, id`, sessionColumns)
	return s.querySessions(ctx, query, userID, statusStrings(statuses))
}

// ListSessionsByConnector returns sessions referencing the connector,
// optionally filtered by status.
func (s *PostgresStore) ListSessionsByConnector(ctx context.Context, stationID, connectorID string, statuses ...models.SessionStatus) ([]*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE station_id = $1 AND connector_id = $2 AND status = ANY($3) ORDER BY created_at, id`, sessionColumns)
	return s.querySessions(ctx, query, stationID, connectorID, statusStrings(statuses))
}

// ListSessionsByStatus returns all sessions in the given status.
func (s *PostgresStore) ListSessionsByStatus(ctx context.Context, status models.SessionStatus) ([]*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE status = $1 ORDER BY created_at, id`, sessionColumns)
	return s.querySessions(ctx, query, string(status))
}

func (s *PostgresStore) querySessions(ctx context.Context, query string, args ...any) ([]*models.Session, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func statusStrings(statuses []models.SessionStatus) []string {
	if len(statuses) == 0 {
		statuses = []models.SessionStatus{
			models.SessionReserved,
			models.SessionInProgress,
			models.SessionCompleted,
			models.SessionCancelled,
			models.SessionFailed,
		}
	}
	out := make([]string, len(statuses))
	for i, status := range statuses {
		out[i] = string(status)
	}
	return out
}

func scanStation(row pgx.Row) (*models.Station, error) {
	var station models.Station
	var status string
	var connectors []byte
	if err := row.Scan(
		&station.ID,
		&station.Name,
		&station.Location.Lat,
		&station.Location.Lon,
		&station.Address,
		&station.Owner,
		&station.Public,
		&status,
		&connectors,
	); err != nil {
		return nil, err
	}
	station.Status = models.StationStatus(status)
	if len(connectors) > 0 {
		if err := json.Unmarshal(connectors, &station.Connectors); err != nil {
			return nil, fmt.Errorf("store: decode connectors: %w", err)
		}
	}
	return &station, nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	var status string
	var actualEnd *time.Time
	if err := row.Scan(
		&session.ID,
		&session.StationID,
		&session.ConnectorID,
		&session.UserID,
		&session.StartTime,
		&session.ExpectedEndTime,
		&actualEnd,
		&session.KWhConsumed,
		&session.Cost,
		&status,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	session.Status = models.SessionStatus(status)
	session.ActualEndTime = actualEnd
	return &session, nil
}
