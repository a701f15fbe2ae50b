package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"evreserve/internal/models"
)

// Notifier is the hook invoked after each committed session transition
// to inform physical infrastructure. Calls are best-effort: the engine
// logs failures and never rolls back the committed transition.
type Notifier interface {
	Notify(ctx context.Context, session *models.Session, event models.EventType) error
}

// LogNotifier writes transition events to the log. It backs local
// development and doubles as the always-present notifier in front of
// webhook and websocket delivery.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a logging notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the event.
func (n *LogNotifier) Notify(_ context.Context, session *models.Session, event models.EventType) error {
	n.logger.Info("session event",
		zap.String("event", string(event)),
		zap.String("session_id", session.ID),
		zap.String("station_id", session.StationID),
		zap.String("connector_id", session.ConnectorID),
		zap.String("user_id", session.UserID),
		zap.String("status", string(session.Status)),
	)
	return nil
}

// Multi fans one event out to several notifiers and joins their errors.
type Multi []Notifier

// Notify delivers to every notifier; all are attempted even if some fail.
func (m Multi) Notify(ctx context.Context, session *models.Session, event models.EventType) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, session, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
