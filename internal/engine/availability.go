package engine

import (
	"context"
	"time"

	"evreserve/internal/ledger"
)

// AvailabilityChecker scans the ledger for reservations conflicting with
// a requested window. Read-only; the engine serializes it with writes on
// the same connector.
type AvailabilityChecker struct {
	ledger *ledger.Ledger
}

// NewAvailabilityChecker builds a checker over the ledger.
func NewAvailabilityChecker(l *ledger.Ledger) *AvailabilityChecker {
	return &AvailabilityChecker{ledger: l}
}

// IsAvailable reports whether [start, end) is free of non-terminal
// sessions on the given connector. The scan is O(n) over that
// connector's sessions, which the record store already narrows.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, stationID, connectorID string, start, end time.Time) (bool, error) {
	sessions, err := c.ledger.ActiveByConnector(ctx, stationID, connectorID)
	if err != nil {
		return false, err
	}
	for _, session := range sessions {
		if overlaps(start, end, session.StartTime, session.ExpectedEndTime) {
			return false, nil
		}
	}
	return true, nil
}

// overlaps applies half-open interval semantics: [a,b) and [c,d) overlap
// unless b <= c or a >= d.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
