// internal/workforce/service.go
package workforce

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the workforce service.
type Service interface {
	RegisterTechnician(ctx context.Context, email, name, phone, password string, specialization Specialization) (*Technician, error)
	Authenticate(ctx context.Context, email, password string) (*Technician, error)
	GetTechnician(ctx context.Context, id uuid.UUID) (*Technician, error)
	UpdateSpecialization(ctx context.Context, id uuid.UUID, specialization Specialization) error
}
