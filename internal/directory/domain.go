// internal/directory/domain.go
package directory

import (
	"time"

	"github.com/google/uuid"
)

// ClientStatus is the closed set of customer account states.
type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientSuspended ClientStatus = "suspended"
	ClientArchived  ClientStatus = "archived"
	ClientOther     ClientStatus = "other"
)

func NormalizeClientStatus(tag string) ClientStatus {
	switch ClientStatus(tag) {
	case ClientActive, ClientSuspended, ClientArchived:
		return ClientStatus(tag)
	default:
		return ClientOther
	}
}

// ElevatorStatus is the closed set of elevator operational states.
type ElevatorStatus string

const (
	ElevatorInService        ElevatorStatus = "in_service"
	ElevatorOutOfService     ElevatorStatus = "out_of_service"
	ElevatorUnderMaintenance ElevatorStatus = "under_maintenance"
	ElevatorDecommissioned   ElevatorStatus = "decommissioned"
	ElevatorStatusOther      ElevatorStatus = "other"
)

func NormalizeElevatorStatus(tag string) ElevatorStatus {
	switch ElevatorStatus(tag) {
	case ElevatorInService, ElevatorOutOfService, ElevatorUnderMaintenance, ElevatorDecommissioned:
		return ElevatorStatus(tag)
	default:
		return ElevatorStatusOther
	}
}

// Client represents a customer company.
type Client struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	ContactEmail   string       `json:"contact_email"`
	ContactPhone   string       `json:"contact_phone,omitempty"`
	BillingAddress string       `json:"billing_address,omitempty"`
	Status         ClientStatus `json:"status"`
	Version        int          `json:"version"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Building represents a serviced building belonging to a client.
type Building struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	AccessNotes string    `json:"access_notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Elevator represents an elevator installed in a building.
type Elevator struct {
	ID             uuid.UUID      `json:"id"`
	BuildingID     uuid.UUID      `json:"building_id"`
	Serial         string         `json:"serial"`
	Manufacturer   string         `json:"manufacturer,omitempty"`
	Model          string         `json:"model,omitempty"`
	CapacityKg     int            `json:"capacity_kg,omitempty"`
	FloorsServed   int            `json:"floors_served,omitempty"`
	Status         ElevatorStatus `json:"status"`
	LastInspection time.Time      `json:"last_inspection,omitempty"`
	NextInspection time.Time      `json:"next_inspection,omitempty"`
	Version        int            `json:"version"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ClientAddedEvent is published when a new client is registered.
type ClientAddedEvent struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
}

// BuildingAddedEvent is published when a building is registered for a client.
type BuildingAddedEvent struct {
	ID       uuid.UUID `json:"id"`
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
}

// ElevatorAddedEvent is published when an elevator is registered.
type ElevatorAddedEvent struct {
	ID         uuid.UUID `json:"id"`
	BuildingID uuid.UUID `json:"building_id"`
	Serial     string    `json:"serial"`
}

// ElevatorStatusChangedEvent is published when an elevator changes state.
type ElevatorStatusChangedEvent struct {
	ID        uuid.UUID      `json:"id"`
	NewStatus ElevatorStatus `json:"new_status"`
}
