package engine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"evreserve/internal/models"
)

// Lifecycle events. Transitions are monotonic along
// reserved -> in_progress -> completed; cancel and fail are the only
// escape branches, and nothing leaves a terminal state.
const (
	eventStart    = "start"
	eventComplete = "complete"
	eventCancel   = "cancel"
	eventFail     = "fail"
)

func lifecycleEvents() fsm.Events {
	return fsm.Events{
		{Name: eventStart, Src: []string{string(models.SessionReserved)}, Dst: string(models.SessionInProgress)},
		{Name: eventComplete, Src: []string{string(models.SessionInProgress)}, Dst: string(models.SessionCompleted)},
		{Name: eventCancel, Src: []string{string(models.SessionReserved)}, Dst: string(models.SessionCancelled)},
		{Name: eventFail, Src: []string{string(models.SessionReserved), string(models.SessionInProgress)}, Dst: string(models.SessionFailed)},
	}
}

// nextStatus runs the event through the transition table and returns the
// resulting status, or ErrInvalidTransition if the table forbids it.
func nextStatus(ctx context.Context, current models.SessionStatus, event string) (models.SessionStatus, error) {
	machine := fsm.NewFSM(string(current), lifecycleEvents(), nil)
	if err := machine.Event(ctx, event); err != nil {
		return "", fmt.Errorf("cannot %s a session in status %q: %w", event, current, ErrInvalidTransition)
	}
	return models.SessionStatus(machine.Current()), nil
}
