// internal/directory/service.go
package directory

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the directory service.
type Service interface {
	AddClient(ctx context.Context, name, contactEmail, contactPhone, billingAddress string) (*Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context) ([]*Client, error)

	AddBuilding(ctx context.Context, clientID uuid.UUID, name, address, accessNotes string) (*Building, error)
	GetBuilding(ctx context.Context, id uuid.UUID) (*Building, error)
	ListBuildingsByClient(ctx context.Context, clientID uuid.UUID) ([]*Building, error)

	AddElevator(ctx context.Context, buildingID uuid.UUID, serial, manufacturer, model string, capacityKg, floorsServed int) (*Elevator, error)
	GetElevator(ctx context.Context, id uuid.UUID) (*Elevator, error)
	UpdateElevatorStatus(ctx context.Context, id uuid.UUID, status ElevatorStatus) error

	Search(ctx context.Context, query string) ([]*Building, error)
}
