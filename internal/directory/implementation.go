// internal/directory/implementation.go
package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"liftops/pkg/eventstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrBuildingNotFound = errors.New("building not found")
	ErrElevatorNotFound = errors.New("elevator not found")
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
	logger     *zap.Logger
}

// NewService creates a new directory service instance.
func NewService(es *eventstore.EventStore, db *sql.DB, logger *zap.Logger) Service {
	return &service{
		eventStore: es,
		db:         db,
		logger:     logger,
	}
}

// AddClient registers a new customer company.
func (s *service) AddClient(ctx context.Context, name, contactEmail, contactPhone, billingAddress string) (*Client, error) {
	id := uuid.New()
	eventData := ClientAddedEvent{
		ID:           id,
		Name:         name,
		ContactEmail: contactEmail,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "client",
		EventType:     "ClientAdded",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "client", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	client := &Client{
		ID:             id,
		Name:           name,
		ContactEmail:   contactEmail,
		ContactPhone:   contactPhone,
		BillingAddress: billingAddress,
		Status:         ClientActive,
		Version:        1,
	}

	query := `
		INSERT INTO clients (id, name, contact_email, contact_phone, billing_address, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query, client.ID, client.Name, client.ContactEmail, client.ContactPhone, client.BillingAddress, string(client.Status), client.Version); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return client, nil
}

// GetClient retrieves a client by its ID.
func (s *service) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, billing_address, status, version, created_at, updated_at
		FROM clients
		WHERE id = $1
	`
	client := &Client{}
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.ContactEmail,
		&client.ContactPhone,
		&client.BillingAddress,
		&status,
		&client.Version,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client from read model: %w", err)
	}

	client.Status = NormalizeClientStatus(status)
	return client, nil
}

func (s *service) ListClients(ctx context.Context) ([]*Client, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, billing_address, status, version, created_at, updated_at
		FROM clients
		ORDER BY name ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		client := &Client{}
		var status string
		if err := rows.Scan(
			&client.ID, &client.Name, &client.ContactEmail, &client.ContactPhone,
			&client.BillingAddress, &status, &client.Version, &client.CreatedAt, &client.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		client.Status = NormalizeClientStatus(status)
		clients = append(clients, client)
	}

	return clients, rows.Err()
}

// AddBuilding registers a building for an existing client.
func (s *service) AddBuilding(ctx context.Context, clientID uuid.UUID, name, address, accessNotes string) (*Building, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	id := uuid.New()
	eventData := BuildingAddedEvent{
		ID:       id,
		ClientID: clientID,
		Name:     name,
		Address:  address,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "building",
		EventType:     "BuildingAdded",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "building", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	building := &Building{
		ID:          id,
		ClientID:    clientID,
		Name:        name,
		Address:     address,
		AccessNotes: accessNotes,
	}

	query := `
		INSERT INTO buildings (id, client_id, name, address, access_notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query, building.ID, building.ClientID, building.Name, building.Address, building.AccessNotes); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return building, nil
}

func (s *service) GetBuilding(ctx context.Context, id uuid.UUID) (*Building, error) {
	query := `
		SELECT id, client_id, name, address, access_notes, created_at, updated_at
		FROM buildings
		WHERE id = $1
	`
	building := &Building{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&building.ID,
		&building.ClientID,
		&building.Name,
		&building.Address,
		&building.AccessNotes,
		&building.CreatedAt,
		&building.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to get building from read model: %w", err)
	}
	return building, nil
}

func (s *service) ListBuildingsByClient(ctx context.Context, clientID uuid.UUID) ([]*Building, error) {
	query := `
		SELECT id, client_id, name, address, access_notes, created_at, updated_at
		FROM buildings
		WHERE client_id = $1
		ORDER BY name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	defer rows.Close()

	var buildings []*Building
	for rows.Next() {
		building := &Building{}
		if err := rows.Scan(
			&building.ID, &building.ClientID, &building.Name, &building.Address,
			&building.AccessNotes, &building.CreatedAt, &building.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		buildings = append(buildings, building)
	}

	return buildings, rows.Err()
}

// AddElevator registers an elevator in an existing building.
func (s *service) AddElevator(ctx context.Context, buildingID uuid.UUID, serial, manufacturer, model string, capacityKg, floorsServed int) (*Elevator, error) {
	if _, err := s.GetBuilding(ctx, buildingID); err != nil {
		return nil, err
	}

	id := uuid.New()
	eventData := ElevatorAddedEvent{
		ID:         id,
		BuildingID: buildingID,
		Serial:     serial,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "elevator",
		EventType:     "ElevatorAdded",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "elevator", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	elevator := &Elevator{
		ID:           id,
		BuildingID:   buildingID,
		Serial:       serial,
		Manufacturer: manufacturer,
		Model:        model,
		CapacityKg:   capacityKg,
		FloorsServed: floorsServed,
		Status:       ElevatorInService,
		Version:      1,
	}

	query := `
		INSERT INTO elevators (id, building_id, serial, manufacturer, model, capacity_kg, floors_served, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := s.db.ExecContext(ctx, query, elevator.ID, elevator.BuildingID, elevator.Serial, elevator.Manufacturer, elevator.Model, elevator.CapacityKg, elevator.FloorsServed, string(elevator.Status), elevator.Version); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return elevator, nil
}

func (s *service) GetElevator(ctx context.Context, id uuid.UUID) (*Elevator, error) {
	query := `
		SELECT id, building_id, serial, manufacturer, model, capacity_kg, floors_served, status, version, created_at, updated_at
		FROM elevators
		WHERE id = $1
	`
	elevator := &Elevator{}
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&elevator.ID,
		&elevator.BuildingID,
		&elevator.Serial,
		&elevator.Manufacturer,
		&elevator.Model,
		&elevator.CapacityKg,
		&elevator.FloorsServed,
		&status,
		&elevator.Version,
		&elevator.CreatedAt,
		&elevator.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrElevatorNotFound
		}
		return nil, fmt.Errorf("failed to get elevator from read model: %w", err)
	}

	elevator.Status = NormalizeElevatorStatus(status)
	return elevator, nil
}

// UpdateElevatorStatus moves an elevator to a new operational state.
func (s *service) UpdateElevatorStatus(ctx context.Context, id uuid.UUID, status ElevatorStatus) error {
	elevator, err := s.GetElevator(ctx, id)
	if err != nil {
		return err
	}

	status = NormalizeElevatorStatus(string(status))

	eventData := ElevatorStatusChangedEvent{
		ID:        id,
		NewStatus: status,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "elevator",
		EventType:     "ElevatorStatusChanged",
		EventData:     jsonData,
		Version:       elevator.Version + 1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "elevator", elevator.Version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE elevators
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
	_, err = s.db.ExecContext(ctx, query, string(status), id, elevator.Version)
	return err
}

// Search finds buildings by client name, building name or address.
func (s *service) Search(ctx context.Context, query string) ([]*Building, error) {
	dbQuery := `
		SELECT b.id, b.client_id, b.name, b.address, b.access_notes, b.created_at, b.updated_at
		FROM buildings b
		JOIN clients c ON c.id = b.client_id
		WHERE to_tsvector('english', b.name || ' ' || b.address) @@ to_tsquery('english', $1)
		OR to_tsvector('english', c.name) @@ to_tsquery('english', $1)
		LIMIT 10
	`
	rows, err := s.db.QueryContext(ctx, dbQuery, query)
	if err != nil {
		return nil, fmt.Errorf("directory search failed: %w", err)
	}
	defer rows.Close()

	var buildings []*Building
	for rows.Next() {
		building := &Building{}
		if err := rows.Scan(
			&building.ID, &building.ClientID, &building.Name, &building.Address,
			&building.AccessNotes, &building.CreatedAt, &building.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		buildings = append(buildings, building)
	}

	return buildings, rows.Err()
}
