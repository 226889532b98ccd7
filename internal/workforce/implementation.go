// internal/workforce/implementation.go
package workforce

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"liftops/pkg/eventstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrTechnicianNotFound = errors.New("technician not found")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// service implements the Service interface.
type service struct {
	eventStore  *eventstore.EventStore
	db          *sql.DB
	logger      *zap.Logger
	rateLimiter *rate.Limiter
}

// NewService creates a new workforce service instance.
func NewService(es *eventstore.EventStore, db *sql.DB, logger *zap.Logger) Service {
	return &service{
		eventStore:  es,
		db:          db,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 requests per minute
	}
}

// RegisterTechnician creates a new technician with credentials.
func (s *service) RegisterTechnician(ctx context.Context, email, name, phone, password string, specialization Specialization) (*Technician, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	id := uuid.New()
	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	specialization = NormalizeSpecialization(string(specialization))

	eventData := TechnicianRegisteredEvent{
		ID:             id,
		Email:          email,
		Name:           name,
		Specialization: specialization,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "technician",
		EventType:     "TechnicianRegistered",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "technician", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	technician := &Technician{
		ID:             id,
		Email:          email,
		Name:           name,
		Phone:          phone,
		Specialization: specialization,
		Status:         "active",
		Version:        1,
	}
	credential := &Credential{
		TechnicianID: id,
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	if err := s.insertTechnicianIntoReadModel(ctx, technician, credential); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	s.logger.Info("technician registered",
		zap.String("technician_id", id.String()),
		zap.String("specialization", string(specialization)))

	return technician, nil
}

func (s *service) insertTechnicianIntoReadModel(ctx context.Context, technician *Technician, credential *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	technicianQuery := `
		INSERT INTO technicians (id, email, name, phone, specialization, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, technicianQuery, technician.ID, technician.Email, technician.Name, technician.Phone, string(technician.Specialization), technician.Status, technician.Version)
	if err != nil {
		return err
	}

	credQuery := `
		INSERT INTO credentials (technician_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`
	_, err = tx.ExecContext(ctx, credQuery, credential.TechnicianID, credential.PasswordHash, credential.Salt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Authenticate verifies a technician's credentials.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Technician, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	technician, err := s.getTechnicianByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	credential, err := s.getCredentialByTechnicianID(ctx, technician.ID)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authentication failed: invalid credentials")
	}

	return technician, nil
}

func (s *service) getTechnicianByEmail(ctx context.Context, email string) (*Technician, error) {
	query := `
		SELECT id, email, name, phone, specialization, status, version
		FROM technicians
		WHERE email = $1
	`
	return s.scanTechnician(s.db.QueryRowContext(ctx, query, email))
}

func (s *service) getCredentialByTechnicianID(ctx context.Context, technicianID uuid.UUID) (*Credential, error) {
	query := `
		SELECT technician_id, password_hash, salt
		FROM credentials
		WHERE technician_id = $1
	`
	credential := &Credential{}
	err := s.db.QueryRowContext(ctx, query, technicianID).Scan(
		&credential.TechnicianID,
		&credential.PasswordHash,
		&credential.Salt,
	)
	if err != nil {
		return nil, err
	}
	return credential, nil
}

// GetTechnician retrieves a technician by their ID.
func (s *service) GetTechnician(ctx context.Context, id uuid.UUID) (*Technician, error) {
	query := `
		SELECT id, email, name, phone, specialization, status, version
		FROM technicians
		WHERE id = $1
	`
	technician, err := s.scanTechnician(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTechnicianNotFound
		}
		return nil, fmt.Errorf("failed to get technician from read model: %w", err)
	}
	return technician, nil
}

func (s *service) scanTechnician(row *sql.Row) (*Technician, error) {
	technician := &Technician{}
	var specialization string
	err := row.Scan(
		&technician.ID,
		&technician.Email,
		&technician.Name,
		&technician.Phone,
		&specialization,
		&technician.Status,
		&technician.Version,
	)
	if err != nil {
		return nil, err
	}
	technician.Specialization = NormalizeSpecialization(specialization)
	return technician, nil
}

// UpdateSpecialization changes a technician's trade tag.
func (s *service) UpdateSpecialization(ctx context.Context, id uuid.UUID, specialization Specialization) error {
	technician, err := s.GetTechnician(ctx, id)
	if err != nil {
		return err
	}

	specialization = NormalizeSpecialization(string(specialization))

	eventData := TechnicianSpecializationChangedEvent{
		ID:                id,
		NewSpecialization: specialization,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "technician",
		EventType:     "TechnicianSpecializationChanged",
		EventData:     jsonData,
		Version:       technician.Version + 1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "technician", technician.Version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE technicians
		SET specialization = $1, version = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err = s.db.ExecContext(ctx, query, string(specialization), technician.Version+1, id)
	return err
}
