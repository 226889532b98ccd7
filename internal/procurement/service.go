// internal/procurement/service.go
package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"liftops/internal/inventory"
)

// Service defines the interface for the procurement service.
type Service interface {
	AddSupplier(ctx context.Context, name, contactEmail, phone string, leadTimeDays int, notes string) (*Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]*Supplier, error)

	CreatePurchaseOrder(ctx context.Context, supplierID uuid.NullUUID, notes string) (*PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) ([]*PurchaseOrder, error)
	AddLine(ctx context.Context, orderID, partID uuid.UUID, quantity int, unitPrice decimal.NullDecimal) (*PurchaseOrderLine, error)
	AssignSupplier(ctx context.Context, orderID, supplierID uuid.UUID) error

	// SuggestLine coalesces a shortfall suggestion onto the open
	// replenishment draft, creating the draft when none exists. A repeated
	// suggestion for the same part and ticket is dropped.
	SuggestLine(ctx context.Context, line inventory.ShortfallLine) error

	// SendPurchaseOrder renders the order as a PDF, emails it to the
	// supplier and marks it issued.
	SendPurchaseOrder(ctx context.Context, id uuid.UUID, actor string) (*PurchaseOrder, error)
}

// Store is the persistence boundary for suppliers and purchase orders.
type Store interface {
	InsertSupplier(ctx context.Context, supplier *Supplier) error
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]*Supplier, error)

	InsertPurchaseOrder(ctx context.Context, order *PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) ([]*PurchaseOrder, error)

	// GetOpenReplenishmentDraft returns the single draft that collects
	// shortfall suggestions, or ErrPurchaseOrderNotFound when none is open.
	GetOpenReplenishmentDraft(ctx context.Context) (*PurchaseOrder, error)

	InsertLine(ctx context.Context, line *PurchaseOrderLine) error
	// HasLine reports whether the order already carries a line for the
	// given part and ticket pair.
	HasLine(ctx context.Context, orderID, partID uuid.UUID, ticketID uuid.NullUUID) (bool, error)

	SetSupplier(ctx context.Context, orderID, supplierID uuid.UUID, version int) error
	MarkIssued(ctx context.Context, orderID uuid.UUID, version int) error
}

// PartCatalog prices suggested lines from the inventory catalog.
type PartCatalog interface {
	GetPart(ctx context.Context, id uuid.UUID) (*inventory.Part, error)
}

// DocumentRenderer turns a purchase order payload into a PDF.
type DocumentRenderer interface {
	RenderPurchaseOrder(ctx context.Context, payload interface{}) ([]byte, error)
}

// MailSender delivers the rendered order to the supplier.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string, attachment []byte, attachmentName string) error
}
