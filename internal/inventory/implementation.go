// internal/inventory/implementation.go
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"liftops/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// service implements the Service interface.
type service struct {
	store      Store
	eventStore *eventstore.EventStore
	cache      *PartCache
	publisher  ShortfallPublisher
	activity   ActivityRecorder
	logger     *zap.Logger
	decisions  metric.Int64Counter
}

// NewService creates a new inventory service instance. cache, publisher and
// activity may be nil; the service degrades to uncached reads, no
// replenishment hand-off and no activity entries respectively.
func NewService(store Store, es *eventstore.EventStore, cache *PartCache, publisher ShortfallPublisher, activity ActivityRecorder, logger *zap.Logger) Service {
	decisions, err := otel.Meter("liftops/inventory").Int64Counter(
		"usage_decisions_total",
		metric.WithDescription("Usage decisions by outcome"),
	)
	if err != nil {
		logger.Warn("failed to register decision counter", zap.Error(err))
	}

	return &service{
		store:      store,
		eventStore: es,
		cache:      cache,
		publisher:  publisher,
		activity:   activity,
		logger:     logger,
		decisions:  decisions,
	}
}

// AddPart registers a new spare part.
func (s *service) AddPart(ctx context.Context, sku, name string, category PartCategory, unitPrice decimal.NullDecimal, initialStock, minStock, reorderPoint int, location string) (*Part, error) {
	if initialStock < 0 {
		return nil, ErrInvalidQuantity
	}

	id := uuid.New()
	eventData := PartAddedEvent{
		ID:             id,
		SKU:            sku,
		Name:           name,
		Category:       NormalizePartCategory(string(category)),
		QuantityOnHand: initialStock,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "part",
		EventType:     "PartAdded",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "part", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	part := &Part{
		ID:             id,
		SKU:            sku,
		Name:           name,
		Category:       eventData.Category,
		UnitPrice:      unitPrice,
		QuantityOnHand: initialStock,
		MinStockLevel:  minStock,
		ReorderPoint:   reorderPoint,
		Location:       location,
		Version:        1,
	}
	if err := s.store.InsertPart(ctx, part); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return part, nil
}

// GetPart retrieves a part, serving display reads through the cache.
func (s *service) GetPart(ctx context.Context, id uuid.UUID) (*Part, error) {
	if s.cache != nil {
		part, err := s.cache.Get(ctx, id)
		if err == nil {
			return part, nil
		}
		if err != redis.Nil {
			s.logger.Warn("part cache read failed", zap.Error(err))
		}
	}

	part, err := s.store.GetPart(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, part); err != nil {
			s.logger.Warn("part cache write failed", zap.Error(err))
		}
	}

	return part, nil
}

func (s *service) ListLowStock(ctx context.Context) ([]*Part, error) {
	return s.store.ListLowStock(ctx)
}

// RestockPart applies an inbound receipt as an explicit stock increment.
func (s *service) RestockPart(ctx context.Context, id uuid.UUID, quantity int) (*Part, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	part, err := s.store.AddStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	s.appendPartEvent(ctx, id, "PartRestocked", PartRestockedEvent{ID: id, Quantity: quantity})

	return part, nil
}

// EvaluateUsage runs the pure decision against a fresh store read. The cache
// is bypassed: evaluation wants the freshest quantity the read model has,
// even though the result is still only an optimistic pre-check.
func (s *service) EvaluateUsage(ctx context.Context, req UsageRequest) (Decision, error) {
	if req.Quantity <= 0 {
		return Decision{}, ErrInvalidQuantity
	}

	part, err := s.store.GetPart(ctx, req.PartID)
	if err != nil {
		return Decision{}, err
	}

	return Evaluate(part, req)
}

// RecordUsage evaluates the request and either commits it from stock or
// routes the shortfall to replenishment. Nothing is persisted on the
// shortfall path.
func (s *service) RecordUsage(ctx context.Context, req UsageRequest, actor string) (*UsageResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	part, err := s.store.GetPart(ctx, req.PartID)
	if err != nil {
		return nil, err
	}

	decision, err := Evaluate(part, req)
	if err != nil {
		return nil, err
	}

	s.countDecision(ctx, decision)

	if !decision.Fulfilled() {
		s.routeToReplenishment(ctx, decision, actor, part)
		return &UsageResult{Decision: decision}, nil
	}

	record := &UsageRecord{
		ID:        uuid.New(),
		PartID:    req.PartID,
		TicketID:  req.TicketID,
		Quantity:  req.Quantity,
		UnitPrice: usagePrice(part, req),
		Note:      req.Note,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.InsertUsageRecord(ctx, record); err != nil {
		if errors.Is(err, ErrStockConflict) {
			// Pass through unchanged: the caller can tell "stock changed"
			// apart from other persist failures and re-evaluate.
			return nil, err
		}
		return nil, fmt.Errorf("failed to persist usage record: %w", err)
	}

	s.invalidateCache(ctx, req.PartID)

	// The stock ledger transaction above is authoritative. A failed event
	// append is logged, never compensated.
	s.appendUsageEvent(ctx, record.ID, "UsageRecorded", UsageRecordedEvent{
		RecordID: record.ID,
		PartID:   record.PartID,
		TicketID: record.TicketID,
		Quantity: record.Quantity,
		Actor:    actor,
	})

	s.recordActivity(ctx, "parts_used", "ticket", record.TicketID, actor,
		fmt.Sprintf("Used %d x %s", record.Quantity, part.Name),
		map[string]interface{}{
			"part_id":         record.PartID.String(),
			"usage_record_id": record.ID.String(),
			"quantity":        record.Quantity,
		})

	return &UsageResult{Decision: decision, Record: record}, nil
}

func (s *service) ListUsageByTicket(ctx context.Context, ticketID uuid.UUID) ([]*UsageRecord, error) {
	return s.store.ListUsageByTicket(ctx, ticketID)
}

// DeleteUsageRecord removes a committed record. Stock is not restored;
// restocking is its own explicit operation.
func (s *service) DeleteUsageRecord(ctx context.Context, id uuid.UUID, actor string) error {
	record, err := s.store.GetUsageRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteUsageRecord(ctx, id); err != nil {
		return err
	}

	s.appendUsageEvent(ctx, record.ID, "UsageRecordDeleted", UsageRecordDeletedEvent{
		RecordID: record.ID,
		PartID:   record.PartID,
	})

	s.recordActivity(ctx, "usage_deleted", "ticket", record.TicketID, actor,
		"Usage record removed (stock not restored)",
		map[string]interface{}{"usage_record_id": record.ID.String()})

	return nil
}

func (s *service) routeToReplenishment(ctx context.Context, decision Decision, actor string, part *Part) {
	line := decision.Shortfall

	if s.publisher != nil {
		if err := s.publisher.SuggestPurchaseOrderLine(ctx, *line); err != nil {
			s.logger.Warn("failed to suggest purchase-order line",
				zap.String("part_id", line.PartID.String()),
				zap.Error(err))
		}
	}

	s.recordActivity(ctx, "shortfall_routed", "ticket", line.TicketID, actor,
		fmt.Sprintf("Shortfall of %d x %s routed to replenishment", line.Quantity, part.Name),
		map[string]interface{}{
			"part_id":  line.PartID.String(),
			"quantity": line.Quantity,
		})
}

func usagePrice(part *Part, req UsageRequest) decimal.NullDecimal {
	if req.UnitPriceOverride.Valid {
		return req.UnitPriceOverride
	}
	return part.UnitPrice
}

func (s *service) countDecision(ctx context.Context, decision Decision) {
	if s.decisions == nil {
		return
	}
	s.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(decision.Outcome)),
	))
}

func (s *service) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("part cache invalidation failed", zap.Error(err))
	}
}

func (s *service) appendPartEvent(ctx context.Context, partID uuid.UUID, eventType string, data interface{}) {
	s.appendEvent(ctx, partID, "part", eventType, data)
}

func (s *service) appendUsageEvent(ctx context.Context, recordID uuid.UUID, eventType string, data interface{}) {
	s.appendEvent(ctx, recordID, "usage_record", eventType, data)
}

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
		s.logger.Warn("failed to read aggregate version", zap.String("event_type", eventType), zap.Error(err))
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

func (s *service) recordActivity(ctx context.Context, activityType, subjectType string, subjectID uuid.UUID, actor, description string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, activityType, subjectType, subjectID, actor, description, metadata); err != nil {
		// Best-effort by contract: never propagates past this service.
		s.logger.Warn("activity log write failed",
			zap.String("activity_type", activityType),
			zap.Error(err))
	}
}
