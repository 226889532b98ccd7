// internal/procurement/domain.go
package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of purchase order states. Only draft orders
// accept new lines; issued, received and cancelled orders are immutable.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderIssued    OrderStatus = "issued"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
	OrderOther     OrderStatus = "other"
)

// NormalizeOrderStatus maps a raw tag onto the closed status set.
func NormalizeOrderStatus(tag string) OrderStatus {
	switch OrderStatus(tag) {
	case OrderDraft, OrderIssued, OrderReceived, OrderCancelled:
		return OrderStatus(tag)
	default:
		return OrderOther
	}
}

// OrderOrigin records how a purchase order came to exist. Replenishment
// drafts are opened by the shortfall consumer and coalesce suggested lines.
type OrderOrigin string

const (
	OriginManual        OrderOrigin = "manual"
	OriginReplenishment OrderOrigin = "replenishment"
)

// Supplier is a vendor purchase orders are sent to.
type Supplier struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Phone        string    `json:"phone,omitempty"`
	LeadTimeDays int       `json:"lead_time_days"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PurchaseOrder groups line items against one supplier. A replenishment
// draft may exist without a supplier until someone assigns one.
type PurchaseOrder struct {
	ID         uuid.UUID            `json:"id"`
	SupplierID uuid.NullUUID        `json:"supplier_id,omitempty"`
	Status     OrderStatus          `json:"status"`
	Origin     OrderOrigin          `json:"origin"`
	Notes      string               `json:"notes,omitempty"`
	IssuedAt   *time.Time           `json:"issued_at,omitempty"`
	Version    int                  `json:"version"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Lines      []*PurchaseOrderLine `json:"lines,omitempty"`
	Total      decimal.Decimal      `json:"total"`
}

// ComputeTotal sums quantity times unit price over lines that carry a
// price. Unpriced lines contribute nothing.
func (po *PurchaseOrder) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range po.Lines {
		if line.UnitPrice.Valid {
			total = total.Add(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return total
}

// PurchaseOrderLine is one part on an order. TicketID ties a replenishment
// line back to the service ticket whose shortfall suggested it; the pair
// (part, ticket) de-duplicates repeated suggestions.
type PurchaseOrderLine struct {
	ID              uuid.UUID           `json:"id"`
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id"`
	PartID          uuid.UUID           `json:"part_id"`
	TicketID        uuid.NullUUID       `json:"ticket_id,omitempty"`
	Quantity        int                 `json:"quantity"`
	UnitPrice       decimal.NullDecimal `json:"unit_price,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// SupplierAddedEvent is published when a vendor is registered.
type SupplierAddedEvent struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PurchaseOrderCreatedEvent is published when a draft order is opened.
type PurchaseOrderCreatedEvent struct {
	ID         uuid.UUID     `json:"id"`
	SupplierID uuid.NullUUID `json:"supplier_id"`
	Origin     OrderOrigin   `json:"origin"`
}

// PurchaseOrderLineAddedEvent is published for every line, manual or
// suggested.
type PurchaseOrderLineAddedEvent struct {
	OrderID  uuid.UUID     `json:"order_id"`
	LineID   uuid.UUID     `json:"line_id"`
	PartID   uuid.UUID     `json:"part_id"`
	TicketID uuid.NullUUID `json:"ticket_id"`
	Quantity int           `json:"quantity"`
}

// PurchaseOrderIssuedEvent is published when an order is rendered and
// emailed to its supplier.
type PurchaseOrderIssuedEvent struct {
	ID         uuid.UUID `json:"id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Total      string    `json:"total"`
}
