// internal/inventory/domain.go
package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartCategory is the closed set of domain tags for spare parts. Tags coming
// back from the store are normalized; anything unrecognized maps to
// CategoryOther instead of being trusted as-is.
type PartCategory string

const (
	CategoryDoor        PartCategory = "door"
	CategoryTraction    PartCategory = "traction"
	CategoryHydraulic   PartCategory = "hydraulic"
	CategoryElectronics PartCategory = "electronics"
	CategorySafety      PartCategory = "safety"
	CategoryCabin       PartCategory = "cabin"
	CategoryOther       PartCategory = "other"
)

// NormalizePartCategory maps a raw tag onto the closed category set.
func NormalizePartCategory(tag string) PartCategory {
	switch PartCategory(tag) {
	case CategoryDoor, CategoryTraction, CategoryHydraulic, CategoryElectronics, CategorySafety, CategoryCabin:
		return PartCategory(tag)
	default:
		return CategoryOther
	}
}

// Part represents a spare part held in stock.
type Part struct {
	ID             uuid.UUID           `json:"id"`
	SKU            string              `json:"sku"`
	Name           string              `json:"name"`
	Category       PartCategory        `json:"category"`
	UnitPrice      decimal.NullDecimal `json:"unit_price,omitempty"`
	QuantityOnHand int                 `json:"quantity_on_hand"`
	MinStockLevel  int                 `json:"min_stock_level"`
	ReorderPoint   int                 `json:"reorder_point"`
	Location       string              `json:"location,omitempty"`
	Version        int                 `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// UsageRequest is a request to consume parts against a ticket. It is
// ephemeral: it only exists for the duration of one decision and is never
// persisted unless the decision is fulfilled and committed.
type UsageRequest struct {
	PartID            uuid.UUID           `json:"part_id"`
	TicketID          uuid.UUID           `json:"ticket_id"`
	Quantity          int                 `json:"quantity"`
	UnitPriceOverride decimal.NullDecimal `json:"unit_price_override,omitempty"`
	Note              string              `json:"note,omitempty"`
}

// UsageRecord is a committed usage request. Immutable once created; deleting
// one does not restore stock.
type UsageRecord struct {
	ID        uuid.UUID           `json:"id"`
	PartID    uuid.UUID           `json:"part_id"`
	TicketID  uuid.UUID           `json:"ticket_id"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unit_price,omitempty"`
	Note      string              `json:"note,omitempty"`
	Actor     string              `json:"actor"`
	CreatedAt time.Time           `json:"created_at"`
}

// ShortfallLine is the positive gap between requested and on-hand quantity,
// handed to the purchase-order subsystem as a suggested line item.
type ShortfallLine struct {
	PartID   uuid.UUID `json:"part_id"`
	TicketID uuid.UUID `json:"ticket_id"`
	Quantity int       `json:"quantity"`
}

// Outcome is the terminal result of evaluating a usage request.
type Outcome string

const (
	OutcomeFulfilled Outcome = "fulfilled"
	OutcomeShortfall Outcome = "shortfall"
)

// Decision is the sum of the two terminal outcomes: a fulfilled decision
// carries the request to commit, a shortfall decision carries one line for
// replenishment routing.
type Decision struct {
	Outcome   Outcome        `json:"outcome"`
	Request   UsageRequest   `json:"request"`
	Shortfall *ShortfallLine `json:"shortfall,omitempty"`
}

// Fulfilled reports whether the decision can be committed from stock.
func (d Decision) Fulfilled() bool {
	return d.Outcome == OutcomeFulfilled
}

// PartAddedEvent is published when a new part is registered.
type PartAddedEvent struct {
	ID             uuid.UUID    `json:"id"`
	SKU            string       `json:"sku"`
	Name           string       `json:"name"`
	Category       PartCategory `json:"category"`
	QuantityOnHand int          `json:"quantity_on_hand"`
}

// PartRestockedEvent is published when an inbound receipt increments stock.
type PartRestockedEvent struct {
	ID       uuid.UUID `json:"id"`
	Quantity int       `json:"quantity"`
}

// UsageRecordedEvent is published when a fulfilled decision is committed.
type UsageRecordedEvent struct {
	RecordID uuid.UUID `json:"record_id"`
	PartID   uuid.UUID `json:"part_id"`
	TicketID uuid.UUID `json:"ticket_id"`
	Quantity int       `json:"quantity"`
	Actor    string    `json:"actor"`
}

// UsageRecordDeletedEvent is published when a usage record is removed. Stock
// is deliberately not restored.
type UsageRecordDeletedEvent struct {
	RecordID uuid.UUID `json:"record_id"`
	PartID   uuid.UUID `json:"part_id"`
}
