// internal/activity/service.go
package activity

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the activity feed. Writers treat it as
// best-effort: a failed Record call never blocks the operation it describes.
type Service interface {
	Record(ctx context.Context, entry *Entry) (*Entry, error)
	ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]*Entry, error)
}
