package events

import (
	"time"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionEstablished EventType = "session.established"
	EventSessionRefreshed   EventType = "session.refreshed"
	EventSessionInvalidated EventType = "session.invalidated"
	EventLoggedOut          EventType = "session.logged_out"
	EventDutiesAssigned     EventType = "duties.assigned"
	EventAttendanceChanged  EventType = "attendance.changed"
)

// Event represents something the session manager or a workflow did.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// SessionInvalidatedPayload explains why the session was cleared.
type SessionInvalidatedPayload struct {
	Reason string `json:"reason"`
}

// SessionPayload carries the identity a session now holds.
type SessionPayload struct {
	Role domain.Role `json:"role"`
}

// DutiesAssignedPayload payload.
type DutiesAssignedPayload struct {
	PeriodID domain.ID `json:"period_id"`
	Message  string    `json:"message,omitempty"`
}

// AttendanceChangedPayload payload.
type AttendanceChangedPayload struct {
	Action string `json:"action"`
}
