// internal/activity/domain.go
package activity

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one human-readable line in a subject's timeline.
type Entry struct {
	ID           uuid.UUID              `json:"id"`
	ActivityType string                 `json:"activity_type"`
	SubjectType  string                 `json:"subject_type"`
	SubjectID    uuid.UUID              `json:"subject_id"`
	Actor        string                 `json:"actor,omitempty"`
	Description  string                 `json:"description"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}
