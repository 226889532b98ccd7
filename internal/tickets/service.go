// internal/tickets/service.go
package tickets

import (
	"context"

	"github.com/google/uuid"

	"liftops/internal/activity"
	"liftops/internal/directory"
	"liftops/internal/inventory"
	"liftops/internal/workforce"
)

// Service defines the interface for the ticket service.
type Service interface {
	OpenTicket(ctx context.Context, elevatorID uuid.UUID, priority TicketPriority, summary, description, reportedBy string) (*Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListOpenTickets(ctx context.Context) ([]*Ticket, error)
	ListTicketsByElevator(ctx context.Context, elevatorID uuid.UUID) ([]*Ticket, error)
	AssignTechnician(ctx context.Context, ticketID, technicianID uuid.UUID) (*Ticket, error)
	UpdateStatus(ctx context.Context, ticketID uuid.UUID, status TicketStatus, actor string) (*Ticket, error)

	// UseParts relays a parts consumption request to the inventory service
	// and reflects a shortfall back onto the ticket state.
	UseParts(ctx context.Context, ticketID uuid.UUID, req inventory.UsageRequest, actor string) (*inventory.UsageResult, error)
	GetTimeline(ctx context.Context, ticketID uuid.UUID) ([]*activity.Entry, error)
}

// DirectoryGateway is the slice of the directory service tickets depends on.
type DirectoryGateway interface {
	GetElevator(ctx context.Context, id uuid.UUID) (*directory.Elevator, error)
}

// WorkforceGateway is the slice of the workforce service tickets depends on.
type WorkforceGateway interface {
	GetTechnician(ctx context.Context, id uuid.UUID) (*workforce.Technician, error)
}

// InventoryGateway is the slice of the inventory service tickets depends on.
type InventoryGateway interface {
	RecordUsage(ctx context.Context, req inventory.UsageRequest, actor string) (*inventory.UsageResult, error)
}

// ActivityGateway records feed entries and serves the ticket timeline.
type ActivityGateway interface {
	Record(ctx context.Context, activityType, subjectType string, subjectID uuid.UUID, actor, description string, metadata map[string]interface{}) error
	ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]*activity.Entry, error)
}
