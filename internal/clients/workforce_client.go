// internal/clients/workforce_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"liftops/internal/workforce"
)

type WorkforceClient struct {
	baseURL string
}

func NewWorkforceClient(baseURL string) *WorkforceClient {
	return &WorkforceClient{baseURL: baseURL}
}

func (c *WorkforceClient) GetTechnician(ctx context.Context, id uuid.UUID) (*workforce.Technician, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/technicians/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, workforce.ErrTechnicianNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var technician workforce.Technician
	if err := json.NewDecoder(resp.Body).Decode(&technician); err != nil {
		return nil, err
	}

	return &technician, nil
}
