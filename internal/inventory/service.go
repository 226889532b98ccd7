// internal/inventory/service.go
package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageResult is what RecordUsage hands back to the caller: the decision that
// was made and, when the decision was fulfilled and the commit succeeded, the
// durable usage record.
type UsageResult struct {
	Decision Decision     `json:"decision"`
	Record   *UsageRecord `json:"record,omitempty"`
}

// Service defines the interface for the inventory service.
type Service interface {
	AddPart(ctx context.Context, sku, name string, category PartCategory, unitPrice decimal.NullDecimal, initialStock, minStock, reorderPoint int, location string) (*Part, error)
	GetPart(ctx context.Context, id uuid.UUID) (*Part, error)
	ListLowStock(ctx context.Context) ([]*Part, error)
	RestockPart(ctx context.Context, id uuid.UUID, quantity int) (*Part, error)

	EvaluateUsage(ctx context.Context, req UsageRequest) (Decision, error)
	RecordUsage(ctx context.Context, req UsageRequest, actor string) (*UsageResult, error)
	ListUsageByTicket(ctx context.Context, ticketID uuid.UUID) ([]*UsageRecord, error)
	DeleteUsageRecord(ctx context.Context, id uuid.UUID, actor string) error
}

// Store is the persistence boundary for parts and usage records.
type Store interface {
	InsertPart(ctx context.Context, part *Part) error
	GetPart(ctx context.Context, id uuid.UUID) (*Part, error)
	ListLowStock(ctx context.Context) ([]*Part, error)
	AddStock(ctx context.Context, id uuid.UUID, quantity int) (*Part, error)

	// InsertUsageRecord persists the record and decrements on-hand stock in
	// one transaction, conditional on sufficient stock. Returns
	// ErrStockConflict when stock changed under the caller.
	InsertUsageRecord(ctx context.Context, record *UsageRecord) error
	GetUsageRecord(ctx context.Context, id uuid.UUID) (*UsageRecord, error)
	ListUsageByTicket(ctx context.Context, ticketID uuid.UUID) ([]*UsageRecord, error)

	// DeleteUsageRecord removes the record without restoring stock.
	DeleteUsageRecord(ctx context.Context, id uuid.UUID) error
}

// ShortfallPublisher hands a shortfall to the purchase-order subsystem as a
// candidate line item. Fire-and-forget: no de-duplication happens here.
type ShortfallPublisher interface {
	SuggestPurchaseOrderLine(ctx context.Context, line ShortfallLine) error
}

// ActivityRecorder emits best-effort activity-feed entries. Failures never
// affect the outcome of the operation that produced them.
type ActivityRecorder interface {
	Record(ctx context.Context, activityType, subjectType string, subjectID uuid.UUID, actor, description string, metadata map[string]interface{}) error
}
