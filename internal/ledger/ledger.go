package ledger

import (
	"context"

	"evreserve/internal/models"
	"evreserve/internal/store"
)

// Ledger is the append-only session record. Sessions are never deleted;
// terminal sessions remain queryable history.
type Ledger struct {
	store store.RecordStore
}

// New builds a ledger over the given record store.
func New(recordStore store.RecordStore) *Ledger {
	return &Ledger{store: recordStore}
}

// Append records a newly created session.
func (l *Ledger) Append(ctx context.Context, session *models.Session) error {
	return l.store.UpsertSession(ctx, session)
}

// Update persists a mutated session.
func (l *Ledger) Update(ctx context.Context, session *models.Session) error {
	return l.store.UpsertSession(ctx, session)
}

// Get returns one session or store.ErrNotFound.
func (l *Ledger) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return l.store.GetSession(ctx, sessionID)
}

// ActiveByConnector returns the non-terminal sessions referencing the
// given connector.
func (l *Ledger) ActiveByConnector(ctx context.Context, stationID, connectorID string) ([]*models.Session, error) {
	return l.store.ListSessionsByConnector(ctx, stationID, connectorID, models.NonTerminalStatuses...)
}

// NonTerminalByUser returns the user's reserved and in-progress sessions.
func (l *Ledger) NonTerminalByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	return l.store.ListSessionsByUser(ctx, userID, models.NonTerminalStatuses...)
}

// ByStatus returns all sessions in the given status.
func (l *Ledger) ByStatus(ctx context.Context, status models.SessionStatus) ([]*models.Session, error) {
	return l.store.ListSessionsByStatus(ctx, status)
}
