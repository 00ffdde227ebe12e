package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionChanged       = "session.changed"
	EventTypeEmployeesInvalidated = "employees.invalidated"
)

// SessionChangeReason says which store operation produced a SessionChangedEvent.
type SessionChangeReason string

const (
	SessionSet            SessionChangeReason = "set"
	SessionTokenRefreshed SessionChangeReason = "token_refreshed"
	SessionCleared        SessionChangeReason = "cleared"
	SessionRestored       SessionChangeReason = "restored"
)

type SessionChangedEvent struct {
	BaseEvent
	Reason SessionChangeReason `json:"reason"`
	UserID string              `json:"user_id"`
}

func NewSessionChangedEvent(reason SessionChangeReason, userID string) *SessionChangedEvent {
	return &SessionChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reason":  string(reason),
				"user_id": userID,
			},
		},
		Reason: reason,
		UserID: userID,
	}
}

type EmployeesInvalidatedEvent struct {
	BaseEvent
	Operation  string `json:"operation"`
	EmployeeID string `json:"employee_id"`
}

func NewEmployeesInvalidatedEvent(operation, employeeID string) *EmployeesInvalidatedEvent {
	return &EmployeesInvalidatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeesInvalidated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"operation":   operation,
				"employee_id": employeeID,
			},
		},
		Operation:  operation,
		EmployeeID: employeeID,
	}
}
