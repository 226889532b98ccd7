// internal/clients/inventory_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"liftops/internal/inventory"
)

type InventoryClient struct {
	baseURL string
}

func NewInventoryClient(baseURL string) *InventoryClient {
	return &InventoryClient{baseURL: baseURL}
}

func (c *InventoryClient) GetPart(ctx context.Context, id uuid.UUID) (*inventory.Part, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/parts/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, inventory.ErrPartNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var part inventory.Part
	if err := json.NewDecoder(resp.Body).Decode(&part); err != nil {
		return nil, err
	}

	return &part, nil
}

func (c *InventoryClient) EvaluateUsage(ctx context.Context, usageReq inventory.UsageRequest) (*inventory.Decision, error) {
	body, err := json.Marshal(usageReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/usage/evaluate", c.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := inventoryStatusError(resp.StatusCode); err != nil {
		return nil, err
	}

	var decision inventory.Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return nil, err
	}

	return &decision, nil
}

func (c *InventoryClient) RecordUsage(ctx context.Context, usageReq inventory.UsageRequest, actor string) (*inventory.UsageResult, error) {
	payload := struct {
		inventory.UsageRequest
		Actor string `json:"actor"`
	}{UsageRequest: usageReq, Actor: actor}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/usage", c.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := inventoryStatusError(resp.StatusCode); err != nil {
		return nil, err
	}

	var result inventory.UsageResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *InventoryClient) ListUsageByTicket(ctx context.Context, ticketID uuid.UUID) ([]*inventory.UsageRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/tickets/%s/usage", c.baseURL, ticketID), nil)
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

	var records []*inventory.UsageRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}

	return records, nil
}

// inventoryStatusError maps the inventory service's HTTP error codes back
// onto its sentinel errors so callers can use errors.Is across the wire.
func inventoryStatusError(code int) error {
	switch code {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusBadRequest:
		return inventory.ErrInvalidQuantity
	case http.StatusNotFound:
		return inventory.ErrPartNotFound
	case http.StatusConflict:
		return inventory.ErrStockConflict
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}
