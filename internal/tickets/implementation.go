// internal/tickets/implementation.go
package tickets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"liftops/internal/activity"
	"liftops/internal/inventory"
	"liftops/pkg/eventstore"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketClosed   = errors.New("ticket is resolved or cancelled")
	ErrEmptySummary   = errors.New("ticket summary must not be empty")
)

// service implements the Service interface. Ticket writes orchestrate the
// downstream services over HTTP; the inventory service stays authoritative
// for stock, so a parts shortfall never rolls back here.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
	directory  DirectoryGateway
	workforce  WorkforceGateway
	inventory  InventoryGateway
	activity   ActivityGateway
	logger     *zap.Logger
}

// NewService creates a new ticket service instance.
func NewService(es *eventstore.EventStore, db *sql.DB, dir DirectoryGateway, wf WorkforceGateway, inv InventoryGateway, act ActivityGateway, logger *zap.Logger) Service {
	return &service{
		eventStore: es,
		db:         db,
		directory:  dir,
		workforce:  wf,
		inventory:  inv,
		activity:   act,
		logger:     logger,
	}
}

// OpenTicket validates the elevator and creates the ticket.
func (s *service) OpenTicket(ctx context.Context, elevatorID uuid.UUID, priority TicketPriority, summary, description, reportedBy string) (*Ticket, error) {
	if summary == "" {
		return nil, ErrEmptySummary
	}

	if _, err := s.directory.GetElevator(ctx, elevatorID); err != nil {
		return nil, fmt.Errorf("failed to validate elevator: %w", err)
	}

	id := uuid.New()
	priority = NormalizeTicketPriority(string(priority))

	eventData := TicketOpenedEvent{
		TicketID:   id,
		ElevatorID: elevatorID,
		Priority:   priority,
		Summary:    summary,
		ReportedBy: reportedBy,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "ticket",
		EventType:     "TicketOpened",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "ticket", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	now := time.Now().UTC()
	ticket := &Ticket{
		ID:          id,
		ElevatorID:  elevatorID,
		Priority:    priority,
		Status:      StatusOpen,
		Summary:     summary,
		Description: description,
		ReportedBy:  reportedBy,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.insertTicketIntoReadModel(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	s.recordActivity(ctx, "ticket_opened", ticket.ID, reportedBy,
		fmt.Sprintf("Ticket opened: %s", summary),
		map[string]interface{}{"elevator_id": elevatorID.String(), "priority": string(priority)})

	return ticket, nil
}

func (s *service) insertTicketIntoReadModel(ctx context.Context, ticket *Ticket) error {
	query := `
		INSERT INTO tickets (id, elevator_id, priority, status, summary, description, reported_by, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query, ticket.ID, ticket.ElevatorID, string(ticket.Priority), string(ticket.Status), ticket.Summary, ticket.Description, ticket.ReportedBy, ticket.Version, ticket.CreatedAt, ticket.UpdatedAt)
	return err
}

// GetTicket retrieves a ticket by its ID.
func (s *service) GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	query := ticketSelect + ` WHERE id = $1`
	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket from read model: %w", err)
	}
	return ticket, nil
}

const ticketSelect = `
	SELECT id, elevator_id, technician_id, priority, status, summary, description, reported_by, resolved_at, version, created_at, updated_at
	FROM tickets
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*Ticket, error) {
	ticket := &Ticket{}
	var priority, status string
	var description, reportedBy sql.NullString
	var resolvedAt sql.NullTime
	err := row.Scan(
		&ticket.ID,
		&ticket.ElevatorID,
		&ticket.TechnicianID,
		&priority,
		&status,
		&description,
		&reportedBy,
		&resolvedAt,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.Priority = NormalizeTicketPriority(priority)
	ticket.Status = NormalizeTicketStatus(status)
	ticket.Description = description.String
	ticket.ReportedBy = reportedBy.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		ticket.ResolvedAt = &t
	}
	return ticket, nil
}

// ListOpenTickets returns every ticket not yet in a terminal state, most
// urgent first.
func (s *service) ListOpenTickets(ctx context.Context) ([]*Ticket, error) {
	query := ticketSelect + `
		WHERE status NOT IN ('resolved', 'cancelled')
		ORDER BY
			CASE priority
				WHEN 'emergency' THEN 0
				WHEN 'high' THEN 1
				WHEN 'normal' THEN 2
				ELSE 3
			END,
			created_at ASC
	`
	return s.listTickets(ctx, query)
}

// ListTicketsByElevator returns a single elevator's ticket history.
func (s *service) ListTicketsByElevator(ctx context.Context, elevatorID uuid.UUID) ([]*Ticket, error) {
	query := ticketSelect + ` WHERE elevator_id = $1 ORDER BY created_at DESC`
	return s.listTickets(ctx, query, elevatorID)
}

func (s *service) listTickets(ctx context.Context, query string, args ...interface{}) ([]*Ticket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// AssignTechnician validates the technician and puts them on the ticket.
func (s *service) AssignTechnician(ctx context.Context, ticketID, technicianID uuid.UUID) (*Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.Terminal() {
		return nil, ErrTicketClosed
	}

	technician, err := s.workforce.GetTechnician(ctx, technicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate technician: %w", err)
	}

	eventData := TechnicianAssignedEvent{
		TicketID:     ticketID,
		TechnicianID: technicianID,
	}
	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   ticketID,
		AggregateType: "ticket",
		EventType:     "TechnicianAssigned",
		EventData:     jsonData,
		Version:       ticket.Version + 1,
	}

	if err := s.eventStore.AppendEvents(ctx, ticketID, "ticket", ticket.Version, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE tickets
		SET technician_id = $1, status = 'assigned', version = $2, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := s.db.ExecContext(ctx, query, technicianID, ticket.Version+1, ticketID); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	ticket.TechnicianID = uuid.NullUUID{UUID: technicianID, Valid: true}
	ticket.Status = StatusAssigned
	ticket.Version++

	s.recordActivity(ctx, "technician_assigned", ticketID, technician.Name,
		fmt.Sprintf("Assigned to %s", technician.Name),
		map[string]interface{}{"technician_id": technicianID.String()})

	return ticket, nil
}

// UpdateStatus moves the ticket through its lifecycle. Terminal tickets are
// immutable.
func (s *service) UpdateStatus(ctx context.Context, ticketID uuid.UUID, status TicketStatus, actor string) (*Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.Terminal() {
		return nil, ErrTicketClosed
	}

	status = NormalizeTicketStatus(string(status))
	if status == StatusOther {
		return nil, fmt.Errorf("unknown ticket status")
	}
	if status == ticket.Status {
		return ticket, nil
	}

	eventData := TicketStatusChangedEvent{
		TicketID: ticketID,
		From:     ticket.Status,
		To:       status,
	}
	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   ticketID,
		AggregateType: "ticket",
		EventType:     "TicketStatusChanged",
		EventData:     jsonData,
		Version:       ticket.Version + 1,
	}

	if err := s.eventStore.AppendEvents(ctx, ticketID, "ticket", ticket.Version, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	var resolvedAt interface{}
	if status == StatusResolved {
		now := time.Now().UTC()
		resolvedAt = now
		ticket.ResolvedAt = &now
	}

	query := `
		UPDATE tickets
		SET status = $1, resolved_at = COALESCE($2, resolved_at), version = $3, updated_at = NOW()
		WHERE id = $4
	`
	if _, err := s.db.ExecContext(ctx, query, string(status), resolvedAt, ticket.Version+1, ticketID); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	from := ticket.Status
	ticket.Status = status
	ticket.Version++

	s.recordActivity(ctx, "status_changed", ticketID, actor,
		fmt.Sprintf("Status changed from %s to %s", from, status),
		map[string]interface{}{"from": string(from), "to": string(status)})

	return ticket, nil
}

// UseParts relays a consumption request to the inventory service. The
// inventory commit is authoritative; a shortfall outcome parks the ticket
// in awaiting_parts but never fails the call.
func (s *service) UseParts(ctx context.Context, ticketID uuid.UUID, req inventory.UsageRequest, actor string) (*inventory.UsageResult, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.Terminal() {
		return nil, ErrTicketClosed
	}

	req.TicketID = ticketID

	result, err := s.inventory.RecordUsage(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	if !result.Decision.Fulfilled() && ticket.Status != StatusAwaitingParts {
		if _, err := s.UpdateStatus(ctx, ticketID, StatusAwaitingParts, actor); err != nil {
			s.logger.Warn("failed to park ticket awaiting parts",
				zap.String("ticket_id", ticketID.String()),
				zap.Error(err))
		}
	}

	return result, nil
}

// GetTimeline returns the ticket's activity feed, newest first.
func (s *service) GetTimeline(ctx context.Context, ticketID uuid.UUID) ([]*activity.Entry, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.activity.ListBySubject(ctx, "ticket", ticketID)
}

// recordActivity emits a best-effort feed entry. Failures are logged and
// never propagated.
func (s *service) recordActivity(ctx context.Context, activityType string, ticketID uuid.UUID, actor, description string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, activityType, "ticket", ticketID, actor, description, metadata); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("activity_type", activityType),
			zap.String("ticket_id", ticketID.String()),
			zap.Error(err))
	}
}
