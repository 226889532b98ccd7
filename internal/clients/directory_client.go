// internal/clients/directory_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"liftops/internal/directory"
)

type DirectoryClient struct {
	baseURL string
}

func NewDirectoryClient(baseURL string) *DirectoryClient {
	return &DirectoryClient{baseURL: baseURL}
}

func (c *DirectoryClient) GetElevator(ctx context.Context, id uuid.UUID) (*directory.Elevator, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/elevators/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, directory.ErrElevatorNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var elevator directory.Elevator
	if err := json.NewDecoder(resp.Body).Decode(&elevator); err != nil {
		return nil, err
	}

	return &elevator, nil
}

func (c *DirectoryClient) UpdateElevatorStatus(ctx context.Context, id uuid.UUID, status directory.ElevatorStatus) error {
	body, err := json.Marshal(struct {
		Status string `json:"status"`
	}{Status: string(status)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, fmt.Sprintf("%s/elevators/%s/status", c.baseURL, id), bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return directory.ErrElevatorNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
