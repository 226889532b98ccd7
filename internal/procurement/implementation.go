// internal/procurement/implementation.go
package procurement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liftops/internal/inventory"
	"liftops/pkg/eventstore"
)

var (
	ErrOrderNotDraft   = errors.New("purchase order is not a draft")
	ErrNoSupplier      = errors.New("purchase order has no supplier assigned")
	ErrEmptyOrder      = errors.New("purchase order has no lines")
	ErrInvalidQuantity = errors.New("line quantity must be a positive integer")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

// ActivityRecorder emits best-effort activity-feed entries.
type ActivityRecorder interface {
	Record(ctx context.Context, activityType, subjectType string, subjectID uuid.UUID, actor, description string, metadata map[string]interface{}) error
}

// service implements the Service interface. The SQL read model is
// authoritative; event appends are best-effort audit trail, mirroring the
// inventory service.
type service struct {
	store       Store
	eventStore  *eventstore.EventStore
	catalog     PartCatalog
	renderer    DocumentRenderer
	mail        MailSender
	activity    ActivityRecorder
	logger      *zap.Logger
	sendLimiter *rate.Limiter
}

// NewService creates a new procurement service instance.
func NewService(store Store, es *eventstore.EventStore, catalog PartCatalog, renderer DocumentRenderer, mail MailSender, activity ActivityRecorder, logger *zap.Logger) Service {
	return &service{
		store:       store,
		eventStore:  es,
		catalog:     catalog,
		renderer:    renderer,
		mail:        mail,
		activity:    activity,
		logger:      logger,
		sendLimiter: rate.NewLimiter(rate.Every(10*time.Second), 6), // outbound mail budget
	}
}

// AddSupplier registers a new vendor.
func (s *service) AddSupplier(ctx context.Context, name, contactEmail, phone string, leadTimeDays int, notes string) (*Supplier, error) {
	if name == "" || contactEmail == "" {
		return nil, fmt.Errorf("supplier name and contact email are required")
	}

	supplier := &Supplier{
		ID:           uuid.New(),
		Name:         name,
		ContactEmail: contactEmail,
		Phone:        phone,
		LeadTimeDays: leadTimeDays,
		Notes:        notes,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.InsertSupplier(ctx, supplier); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, supplier.ID, "supplier", "SupplierAdded", SupplierAddedEvent{
		ID:   supplier.ID,
		Name: supplier.Name,
	})

	return supplier, nil
}

func (s *service) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return s.store.GetSupplier(ctx, id)
}

func (s *service) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	return s.store.ListSuppliers(ctx)
}

// CreatePurchaseOrder opens a manual draft order.
func (s *service) CreatePurchaseOrder(ctx context.Context, supplierID uuid.NullUUID, notes string) (*PurchaseOrder, error) {
	if supplierID.Valid {
		if _, err := s.store.GetSupplier(ctx, supplierID.UUID); err != nil {
			return nil, err
		}
	}
	return s.createOrder(ctx, supplierID, OriginManual, notes)
}

func (s *service) createOrder(ctx context.Context, supplierID uuid.NullUUID, origin OrderOrigin, notes string) (*PurchaseOrder, error) {
	now := time.Now().UTC()
	order := &PurchaseOrder{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Status:     OrderDraft,
		Origin:     origin,
		Notes:      notes,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
		Total:      decimal.Zero,
	}

	if err := s.store.InsertPurchaseOrder(ctx, order); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, order.ID, "purchase_order", "PurchaseOrderCreated", PurchaseOrderCreatedEvent{
		ID:         order.ID,
		SupplierID: supplierID,
		Origin:     origin,
	})

	return order, nil
}

func (s *service) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	return s.store.GetPurchaseOrder(ctx, id)
}

func (s *service) ListPurchaseOrders(ctx context.Context) ([]*PurchaseOrder, error) {
	return s.store.ListPurchaseOrders(ctx)
}

// AddLine appends a manual line to a draft order.
func (s *service) AddLine(ctx context.Context, orderID, partID uuid.UUID, quantity int, unitPrice decimal.NullDecimal) (*PurchaseOrderLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	order, err := s.store.GetPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != OrderDraft {
		return nil, ErrOrderNotDraft
	}

	line := &PurchaseOrderLine{
		ID:              uuid.New(),
		PurchaseOrderID: orderID,
		PartID:          partID,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.InsertLine(ctx, line); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, orderID, "purchase_order", "PurchaseOrderLineAdded", PurchaseOrderLineAddedEvent{
		OrderID:  orderID,
		LineID:   line.ID,
		PartID:   partID,
		Quantity: quantity,
	})

	return line, nil
}

// AssignSupplier binds a supplier to a draft, typically a replenishment
// draft that was opened without one.
func (s *service) AssignSupplier(ctx context.Context, orderID, supplierID uuid.UUID) error {
	order, err := s.store.GetPurchaseOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != OrderDraft {
		return ErrOrderNotDraft
	}
	if _, err := s.store.GetSupplier(ctx, supplierID); err != nil {
		return err
	}
	return s.store.SetSupplier(ctx, orderID, supplierID, order.Version)
}

// SuggestLine folds a shortfall suggestion into the open replenishment
// draft. Duplicate part and ticket pairs are dropped rather than doubled.
func (s *service) SuggestLine(ctx context.Context, line inventory.ShortfallLine) error {
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	draft, err := s.store.GetOpenReplenishmentDraft(ctx)
	if err != nil {
		if !errors.Is(err, ErrPurchaseOrderNotFound) {
			return err
		}
		draft, err = s.createOrder(ctx, uuid.NullUUID{}, OriginReplenishment, "Auto-generated from stock shortfalls")
		if err != nil {
			return err
		}
	}

	ticketID := uuid.NullUUID{UUID: line.TicketID, Valid: line.TicketID != uuid.Nil}

	exists, err := s.store.HasLine(ctx, draft.ID, line.PartID, ticketID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("dropping duplicate replenishment suggestion",
			zap.String("order_id", draft.ID.String()),
			zap.String("part_id", line.PartID.String()),
			zap.String("ticket_id", line.TicketID.String()))
		return nil
	}

	orderLine := &PurchaseOrderLine{
		ID:              uuid.New(),
		PurchaseOrderID: draft.ID,
		PartID:          line.PartID,
		TicketID:        ticketID,
		Quantity:        line.Quantity,
		UnitPrice:       s.catalogPrice(ctx, line.PartID),
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.InsertLine(ctx, orderLine); err != nil {
		return err
	}

	s.appendEvent(ctx, draft.ID, "purchase_order", "PurchaseOrderLineAdded", PurchaseOrderLineAddedEvent{
		OrderID:  draft.ID,
		LineID:   orderLine.ID,
		PartID:   line.PartID,
		TicketID: ticketID,
		Quantity: line.Quantity,
	})

	s.recordActivity(ctx, "replenishment_suggested", draft.ID, "",
		fmt.Sprintf("Suggested ordering %d of part %s", line.Quantity, line.PartID),
		map[string]interface{}{
			"part_id":   line.PartID.String(),
			"ticket_id": line.TicketID.String(),
			"quantity":  line.Quantity,
		})

	return nil
}

// catalogPrice looks up the part's list price. A missing price never blocks
// a suggestion; the line simply goes in unpriced.
func (s *service) catalogPrice(ctx context.Context, partID uuid.UUID) decimal.NullDecimal {
	if s.catalog == nil {
		return decimal.NullDecimal{}
	}
	part, err := s.catalog.GetPart(ctx, partID)
	if err != nil {
		s.logger.Warn("failed to price suggested line",
			zap.String("part_id", partID.String()),
			zap.Error(err))
		return decimal.NullDecimal{}
	}
	return part.UnitPrice
}

// purchaseOrderDocument is the payload handed to the rendering service.
type purchaseOrderDocument struct {
	OrderID   uuid.UUID            `json:"order_id"`
	Supplier  *Supplier            `json:"supplier"`
	Lines     []*PurchaseOrderLine `json:"lines"`
	Total     string               `json:"total"`
	CreatedAt time.Time            `json:"created_at"`
}

// SendPurchaseOrder renders the draft as a PDF, emails it to the supplier
// and marks it issued. Outbound sends are rate limited.
func (s *service) SendPurchaseOrder(ctx context.Context, id uuid.UUID, actor string) (*PurchaseOrder, error) {
	if !s.sendLimiter.Allow() {
		return nil, ErrRateLimited
	}

	order, err := s.store.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != OrderDraft {
		return nil, ErrOrderNotDraft
	}
	if !order.SupplierID.Valid {
		return nil, ErrNoSupplier
	}
	if len(order.Lines) == 0 {
		return nil, ErrEmptyOrder
	}

	supplier, err := s.store.GetSupplier(ctx, order.SupplierID.UUID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.RenderPurchaseOrder(ctx, purchaseOrderDocument{
		OrderID:   order.ID,
		Supplier:  supplier,
		Lines:     order.Lines,
		Total:     order.Total.StringFixed(2),
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render purchase order: %w", err)
	}

	subject := fmt.Sprintf("Purchase order %s", order.ID)
	body := fmt.Sprintf("Please find attached purchase order %s with %d line(s), total %s.", order.ID, len(order.Lines), order.Total.StringFixed(2))
	attachmentName := fmt.Sprintf("purchase-order-%s.pdf", order.ID)
	if err := s.mail.Send(ctx, supplier.ContactEmail, subject, body, pdf, attachmentName); err != nil {
		return nil, fmt.Errorf("failed to email purchase order: %w", err)
	}

	if err := s.store.MarkIssued(ctx, order.ID, order.Version); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order.Status = OrderIssued
	order.IssuedAt = &now
	order.Version++

	s.appendEvent(ctx, order.ID, "purchase_order", "PurchaseOrderIssued", PurchaseOrderIssuedEvent{
		ID:         order.ID,
		SupplierID: order.SupplierID.UUID,
		Total:      order.Total.StringFixed(2),
	})

	s.recordActivity(ctx, "purchase_order_issued", order.ID, actor,
		fmt.Sprintf("Purchase order sent to %s", supplier.Name),
		map[string]interface{}{
			"supplier_id": supplier.ID.String(),
			"total":       order.Total.StringFixed(2),
		})

	s.logger.Info("purchase order issued",
		zap.String("order_id", order.ID.String()),
		zap.String("supplier", supplier.Name),
		zap.String("total", order.Total.StringFixed(2)))

	return order, nil
}

// appendEvent writes to the event log best-effort. The read model already
// committed; a failed append is logged, not compensated.
func (s *service) appendEvent(ctx context.Context, aggregateID uuid.UUID, aggregateType, eventType string, data interface{}) {
	if s.eventStore == nil {
		return
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("failed to marshal event data", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	version, err := s.eventStore.GetCurrentVersion(ctx, aggregateID)
	if err != nil {
		s.logger.Warn("failed to get aggregate version", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	event := eventstore.Event{
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		EventData:     jsonData,
		Version:       version + 1,
	}

	if err := s.eventStore.AppendEvents(ctx, aggregateID, aggregateType, version, []eventstore.Event{event}); err != nil {
		s.logger.Warn("failed to append event", zap.String("event_type", eventType), zap.Error(err))
	}
}

// recordActivity emits a best-effort feed entry.
func (s *service) recordActivity(ctx context.Context, activityType string, orderID uuid.UUID, actor, description string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, activityType, "purchase_order", orderID, actor, description, metadata); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("activity_type", activityType),
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}
