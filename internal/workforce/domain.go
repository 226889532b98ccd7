// internal/workforce/domain.go
package workforce

import (
	"time"

	"github.com/google/uuid"
)

// Specialization is the closed set of technician trade tags. Unknown tags
// from the store normalize to SpecializationOther.
type Specialization string

const (
	SpecializationMechanical Specialization = "mechanical"
	SpecializationElectrical Specialization = "electrical"
	SpecializationHydraulic  Specialization = "hydraulic"
	SpecializationInspection Specialization = "inspection"
	SpecializationGeneral    Specialization = "general"
	SpecializationOther      Specialization = "other"
)

// NormalizeSpecialization maps a raw tag onto the closed set.
func NormalizeSpecialization(tag string) Specialization {
	switch Specialization(tag) {
	case SpecializationMechanical, SpecializationElectrical, SpecializationHydraulic, SpecializationInspection, SpecializationGeneral:
		return Specialization(tag)
	default:
		return SpecializationOther
	}
}

// Technician represents a field technician.
type Technician struct {
	ID             uuid.UUID      `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone,omitempty"`
	Specialization Specialization `json:"specialization"`
	Status         string         `json:"status"`
	Version        int            `json:"version"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Credential represents a technician's login credentials.
type Credential struct {
	TechnicianID uuid.UUID `json:"technician_id"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
}

// TechnicianRegisteredEvent is published when a new technician registers.
type TechnicianRegisteredEvent struct {
	ID             uuid.UUID      `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Specialization Specialization `json:"specialization"`
}

// TechnicianSpecializationChangedEvent is published when a technician's
// trade tag is changed.
type TechnicianSpecializationChangedEvent struct {
	ID                uuid.UUID      `json:"id"`
	NewSpecialization Specialization `json:"new_specialization"`
}
