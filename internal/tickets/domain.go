// internal/tickets/domain.go
package tickets

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the closed set of ticket lifecycle states. Resolved and
// cancelled are terminal.
type TicketStatus string

const (
	StatusOpen          TicketStatus = "open"
	StatusAssigned      TicketStatus = "assigned"
	StatusInProgress    TicketStatus = "in_progress"
	StatusAwaitingParts TicketStatus = "awaiting_parts"
	StatusResolved      TicketStatus = "resolved"
	StatusCancelled     TicketStatus = "cancelled"
	StatusOther         TicketStatus = "other"
)

// NormalizeTicketStatus maps a raw tag onto the closed status set.
func NormalizeTicketStatus(tag string) TicketStatus {
	switch TicketStatus(tag) {
	case StatusOpen, StatusAssigned, StatusInProgress, StatusAwaitingParts, StatusResolved, StatusCancelled:
		return TicketStatus(tag)
	default:
		return StatusOther
	}
}

// Terminal reports whether the status permits no further changes.
func (s TicketStatus) Terminal() bool {
	return s == StatusResolved || s == StatusCancelled
}

// TicketPriority orders tickets for dispatch. Unknown tags fall back to
// normal rather than other; a ticket always has a workable priority.
type TicketPriority string

const (
	PriorityLow       TicketPriority = "low"
	PriorityNormal    TicketPriority = "normal"
	PriorityHigh      TicketPriority = "high"
	PriorityEmergency TicketPriority = "emergency"
)

// NormalizeTicketPriority maps a raw tag onto the closed priority set.
func NormalizeTicketPriority(tag string) TicketPriority {
	switch TicketPriority(tag) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityEmergency:
		return TicketPriority(tag)
	default:
		return PriorityNormal
	}
}

// Ticket represents a service call against one elevator.
type Ticket struct {
	ID           uuid.UUID      `json:"id"`
	ElevatorID   uuid.UUID      `json:"elevator_id"`
	TechnicianID uuid.NullUUID  `json:"technician_id,omitempty"`
	Priority     TicketPriority `json:"priority"`
	Status       TicketStatus   `json:"status"`
	Summary      string         `json:"summary"`
	Description  string         `json:"description,omitempty"`
	ReportedBy   string         `json:"reported_by,omitempty"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
	Version      int            `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TicketOpenedEvent is published when a new ticket is opened.
type TicketOpenedEvent struct {
	TicketID   uuid.UUID      `json:"ticket_id"`
	ElevatorID uuid.UUID      `json:"elevator_id"`
	Priority   TicketPriority `json:"priority"`
	Summary    string         `json:"summary"`
	ReportedBy string         `json:"reported_by"`
}

// TechnicianAssignedEvent is published when a technician takes a ticket.
type TechnicianAssignedEvent struct {
	TicketID     uuid.UUID `json:"ticket_id"`
	TechnicianID uuid.UUID `json:"technician_id"`
}

// TicketStatusChangedEvent is published on every lifecycle transition.
type TicketStatusChangedEvent struct {
	TicketID uuid.UUID    `json:"ticket_id"`
	From     TicketStatus `json:"from"`
	To       TicketStatus `json:"to"`
}
