// internal/activity/implementation.go
package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrEmptyDescription = errors.New("activity description must not be empty")

// service implements the Service interface. The feed is itself the audit
// trail, so entries are plain inserts rather than event-sourced writes.
type service struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewService creates a new activity service instance.
func NewService(db *sql.DB, logger *zap.Logger) Service {
	return &service{db: db, logger: logger}
}

func (s *service) Record(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry.Description == "" {
		return nil, ErrEmptyDescription
	}

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO activity_entries (id, activity_type, subject_type, subject_id, actor, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := s.db.ExecContext(ctx, query, entry.ID, entry.ActivityType, entry.SubjectType, entry.SubjectID, entry.Actor, entry.Description, metadataJSON, entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert activity entry: %w", err)
	}

	return entry, nil
}

func (s *service) ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]*Entry, error) {
	query := `
		SELECT id, activity_type, subject_type, subject_id, actor, description, metadata, created_at
		FROM activity_entries
		WHERE subject_type = $1 AND subject_id = $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		var metadataJSON []byte
		if err := rows.Scan(
			&entry.ID, &entry.ActivityType, &entry.SubjectType, &entry.SubjectID,
			&entry.Actor, &entry.Description, &metadataJSON, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				s.logger.Warn("failed to unmarshal activity metadata", zap.Error(err))
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
