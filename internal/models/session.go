package models

import "time"

// SessionStatus is the lifecycle state of a charging session.
type SessionStatus string

const (
	SessionReserved   SessionStatus = "reserved"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
	SessionFailed     SessionStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionCancelled, SessionFailed:
		return true
	}
	return false
}

// NonTerminalStatuses are the states a live reservation can be in.
var NonTerminalStatuses = []SessionStatus{SessionReserved, SessionInProgress}

// EventType identifies a committed session transition for notification
// purposes.
type EventType string

const (
	EventReserved  EventType = "reserved"
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventCancelled EventType = "cancelled"
	EventExpired   EventType = "expired"
)

// Session binds a user to a connector for a time window and records the
// reservation's progress. Sessions are never deleted; terminal sessions
// remain queryable history.
type Session struct {
	ID              string        `json:"session_id"`
	StationID       string        `json:"station_id"`
	ConnectorID     string        `json:"connector_id"`
	UserID          string        `json:"user_id"`
	StartTime       time.Time     `json:"start_time"`
	ExpectedEndTime time.Time     `json:"expected_end_time"`
	ActualEndTime   *time.Time    `json:"actual_end_time,omitempty"`
	KWhConsumed     float64       `json:"kwh_consumed"`
	Cost            float64       `json:"cost"`
	Status          SessionStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Clone returns a copy safe to hand out across goroutines.
func (s *Session) Clone() *Session {
	cp := *s
	if s.ActualEndTime != nil {
		t := *s.ActualEndTime
		cp.ActualEndTime = &t
	}
	return &cp
}
