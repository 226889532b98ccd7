// internal/clients/activity_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"liftops/internal/activity"
)

// ActivityClient posts feed entries to the activity service. It satisfies
// the activity recorder dependency of the other services, which treat
// recording as best-effort.
type ActivityClient struct {
	baseURL string
}

func NewActivityClient(baseURL string) *ActivityClient {
	return &ActivityClient{baseURL: baseURL}
}

func (c *ActivityClient) Record(ctx context.Context, activityType, subjectType string, subjectID uuid.UUID, actor, description string, metadata map[string]interface{}) error {
	entry := activity.Entry{
		ActivityType: activityType,
		SubjectType:  subjectType,
		SubjectID:    subjectID,
		Actor:        actor,
		Description:  description,
		Metadata:     metadata,
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/entries", c.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

func (c *ActivityClient) ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]*activity.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/subjects/%s/%s/entries", c.baseURL, subjectType, subjectID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var entries []*activity.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}

	return entries, nil
}
