package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evreserve/internal/cache"
	"evreserve/internal/inventory"
	"evreserve/internal/ledger"
	"evreserve/internal/metrics"
	"evreserve/internal/models"
	"evreserve/internal/notify"
)

// Engine arbitrates reservations and drives the session lifecycle. It is
// the only component with cross-entity invariants: a session transition
// and its connector status change always commit together, serialized per
// connector. The notification hook runs after the lock is released and
// never affects the committed state.
type Engine struct {
	inventory *inventory.Inventory
	ledger    *ledger.Ledger
	checker   *AvailabilityChecker
	notifier  notify.Notifier
	cache     *cache.ActiveSessions
	logger    *zap.Logger
	locks     *connectorLocks

	now   func() time.Time
	newID func() string
}

// New wires the engine. notifier and activeCache may be nil.
func New(inv *inventory.Inventory, led *ledger.Ledger, notifier notify.Notifier, activeCache *cache.ActiveSessions, logger *zap.Logger) *Engine {
	return &Engine{
		inventory: inv,
		ledger:    led,
		checker:   NewAvailabilityChecker(led),
		notifier:  notifier,
		cache:     activeCache,
		logger:    logger,
		locks:     newConnectorLocks(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ReserveInput is a reservation request.
type ReserveInput struct {
	StationID       string
	ConnectorID     string
	UserID          string
	StartTime       time.Time
	ExpectedEndTime time.Time
}

// Reserve validates the request, checks the window, and atomically
// commits a reserved session together with the connector status change.
func (e *Engine) Reserve(ctx context.Context, in ReserveInput) (*models.Session, error) {
	session, err := e.reserve(ctx, in)
	metrics.ReservationsTotal.WithLabelValues(reserveResult(err)).Inc()
	if err != nil {
		return nil, err
	}
	e.afterCommit(ctx, session, models.EventReserved)
	return session, nil
}

func (e *Engine) reserve(ctx context.Context, in ReserveInput) (*models.Session, error) {
	now := e.now().UTC()
	if !in.ExpectedEndTime.After(now) {
		return nil, fmt.Errorf("expected end time must be in the future: %w", ErrInvalidWindow)
	}
	if !in.StartTime.Before(in.ExpectedEndTime) {
		return nil, fmt.Errorf("start time must be before expected end time: %w", ErrInvalidWindow)
	}

	unlock := e.locks.lock(in.StationID, in.ConnectorID)
	defer unlock()

	_, connector, err := e.inventory.GetConnector(ctx, in.StationID, in.ConnectorID)
	if err != nil {
		return nil, err
	}
	if connector.Status != models.ConnectorAvailable {
		return nil, fmt.Errorf("connector %q is %s: %w", in.ConnectorID, connector.Status, ErrConflict)
	}

	free, err := e.checker.IsAvailable(ctx, in.StationID, in.ConnectorID, in.StartTime, in.ExpectedEndTime)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, fmt.Errorf("connector %q is not available during the requested window: %w", in.ConnectorID, ErrConflict)
	}

	session := &models.Session{
		ID:              e.newID(),
		StationID:       in.StationID,
		ConnectorID:     in.ConnectorID,
		UserID:          in.UserID,
		StartTime:       in.StartTime,
		ExpectedEndTime: in.ExpectedEndTime,
		Status:          models.SessionReserved,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.ledger.Append(ctx, session); err != nil {
		return nil, err
	}
	if err := e.inventory.SetConnectorStatus(ctx, in.StationID, in.ConnectorID, models.ConnectorReserved); err != nil {
		return nil, err
	}
	return session, nil
}

// Start transitions a reserved session to in_progress and marks the
// connector occupied. StartTime is reset to the actual start instant.
func (e *Engine) Start(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := e.transition(ctx, sessionID, eventStart, models.ConnectorOccupied, func(s *models.Session, now time.Time) {
		s.StartTime = now
	})
	metrics.TransitionsTotal.WithLabelValues(eventStart, transitionResult(err)).Inc()
	if err != nil {
		return nil, err
	}
	e.afterCommit(ctx, session, models.EventStarted)
	return session, nil
}

// End transitions an in-progress session to completed, records usage,
// and frees the connector. Unspecified kwh/cost default to zero.
func (e *Engine) End(ctx context.Context, sessionID string, kwhConsumed, cost float64) (*models.Session, error) {
	session, err := e.transition(ctx, sessionID, eventComplete, models.ConnectorAvailable, func(s *models.Session, now time.Time) {
		s.ActualEndTime = &now
		s.KWhConsumed = kwhConsumed
		s.Cost = cost
	})
	metrics.TransitionsTotal.WithLabelValues(eventComplete, transitionResult(err)).Inc()
	if err != nil {
		return nil, err
	}
	e.afterCommit(ctx, session, models.EventCompleted)
	return session, nil
}

// Cancel cancels a pending reservation and frees the connector. Only
// reserved sessions are cancellable through this path.
func (e *Engine) Cancel(ctx context.Context, sessionID string) error {
	session, err := e.transition(ctx, sessionID, eventCancel, models.ConnectorAvailable, nil)
	metrics.TransitionsTotal.WithLabelValues(eventCancel, transitionResult(err)).Inc()
	if err != nil {
		return err
	}
	e.afterCommit(ctx, session, models.EventCancelled)
	return nil
}

// transition applies one lifecycle event and the paired connector status
// change as a single unit under the connector lock.
func (e *Engine) transition(ctx context.Context, sessionID, event string, connectorStatus models.ConnectorStatus, mutate func(*models.Session, time.Time)) (*models.Session, error) {
	session, err := e.ledger.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.lock(session.StationID, session.ConnectorID)
	defer unlock()

	// Re-read under the lock; a concurrent call may have moved the
	// session since the unguarded fetch.
	session, err = e.ledger.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, err := nextStatus(ctx, session.Status, event)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	session.Status = next
	session.UpdatedAt = now
	if mutate != nil {
		mutate(session, now)
	}

	if err := e.ledger.Update(ctx, session); err != nil {
		return nil, err
	}
	if err := e.inventory.SetConnectorStatus(ctx, session.StationID, session.ConnectorID, connectorStatus); err != nil {
		return nil, err
	}
	return session, nil
}

// ListUserSessions returns the user's non-terminal sessions, consulting
// the cache first when one is wired.
func (e *Engine) ListUserSessions(ctx context.Context, userID string) ([]*models.Session, error) {
	if e.cache != nil {
		sessions, err := e.cache.Get(ctx, userID)
		if err == nil {
			return sessions, nil
		}
		if !errors.Is(err, redis.Nil) {
			e.logger.Warn("active session cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	sessions, err := e.ledger.NonTerminalByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Save(ctx, userID, sessions); err != nil {
			e.logger.Warn("active session cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return sessions, nil
}

// GetSession returns one session.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return e.ledger.Get(ctx, sessionID)
}

// ListStations returns the station inventory.
func (e *Engine) ListStations(ctx context.Context) ([]*models.Station, error) {
	return e.inventory.ListStations(ctx)
}

// GetStation returns one station.
func (e *Engine) GetStation(ctx context.Context, stationID string) (*models.Station, error) {
	return e.inventory.GetStation(ctx, stationID)
}

// ExpireOverdue fails reserved sessions whose window fully passed
// without Start and frees their connectors. Returns how many were
// expired.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	sessions, err := e.ledger.ByStatus(ctx, models.SessionReserved)
	if err != nil {
		return 0, err
	}

	now := e.now().UTC()
	expired := 0
	for _, candidate := range sessions {
		if candidate.ExpectedEndTime.After(now) {
			continue
		}
		session, err := e.expireOne(ctx, candidate.ID)
		if err != nil {
			e.logger.Warn("failed to expire reservation", zap.String("session_id", candidate.ID), zap.Error(err))
			continue
		}
		if session == nil {
			continue
		}
		metrics.ExpiredReservations.Inc()
		e.afterCommit(ctx, session, models.EventExpired)
		expired++
	}
	return expired, nil
}

// expireOne re-checks the candidate under its connector lock; a nil
// session means a concurrent transition got there first.
func (e *Engine) expireOne(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := e.ledger.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.lock(session.StationID, session.ConnectorID)
	defer unlock()

	session, err = e.ledger.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := e.now().UTC()
	if session.Status != models.SessionReserved || session.ExpectedEndTime.After(now) {
		return nil, nil
	}

	next, err := nextStatus(ctx, session.Status, eventFail)
	if err != nil {
		return nil, err
	}
	session.Status = next
	session.UpdatedAt = now

	if err := e.ledger.Update(ctx, session); err != nil {
		return nil, err
	}
	if err := e.inventory.SetConnectorStatus(ctx, session.StationID, session.ConnectorID, models.ConnectorAvailable); err != nil {
		return nil, err
	}
	return session, nil
}

// afterCommit runs the best-effort side channel outside the critical
// section: cache invalidation and the notification hook. Failures are
// logged and swallowed.
func (e *Engine) afterCommit(ctx context.Context, session *models.Session, event models.EventType) {
	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, session.UserID); err != nil && !errors.Is(err, redis.Nil) {
			e.logger.Warn("active session cache invalidation failed", zap.String("user_id", session.UserID), zap.Error(err))
		}
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, session, event); err != nil {
			metrics.NotificationFailures.Inc()
			e.logger.Warn("notification hook failed",
				zap.String("session_id", session.ID),
				zap.String("event", string(event)),
				zap.Error(err),
			)
		}
	}
	e.logger.Info("session transition committed",
		zap.String("session_id", session.ID),
		zap.String("station_id", session.StationID),
		zap.String("connector_id", session.ConnectorID),
		zap.String("event", string(event)),
		zap.String("status", string(session.Status)),
	)
}

func reserveResult(err error) string {
	switch {
	case err == nil:
		return "reserved"
	case errors.Is(err, ErrInvalidWindow):
		return "invalid_window"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "error"
	}
}
