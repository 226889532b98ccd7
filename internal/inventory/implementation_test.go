// internal/inventory/implementation_test.go
package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockStore is a mutex-guarded in-memory Store whose usage commit applies the
// same conditional decrement as the real transaction.
type mockStore struct {
	mu           sync.Mutex
	parts        map[uuid.UUID]*Part
	records      map[uuid.UUID]*UsageRecord
	getPartCalls int
	insertErr    error
}

func newMockStore(parts ...*Part) *mockStore {
	s := &mockStore{
		parts:   make(map[uuid.UUID]*Part),
		records: make(map[uuid.UUID]*UsageRecord),
	}
	for _, p := range parts {
		s.parts[p.ID] = p
	}
	return s
}

func (m *mockStore) InsertPart(ctx context.Context, part *Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts[part.ID] = part
	return nil
}

func (m *mockStore) GetPart(ctx context.Context, id uuid.UUID) (*Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getPartCalls++

	part, ok := m.parts[id]
	if !ok {
		return nil, ErrPartNotFound
	}
	snapshot := *part
	return &snapshot, nil
}

func (m *mockStore) ListLowStock(ctx context.Context) ([]*Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var low []*Part
	for _, p := range m.parts {
		if p.QuantityOnHand <= p.ReorderPoint {
			snapshot := *p
			low = append(low, &snapshot)
		}
	}
	return low, nil
}

func (m *mockStore) AddStock(ctx context.Context, id uuid.UUID, quantity int) (*Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	part, ok := m.parts[id]
	if !ok {
		return nil, ErrPartNotFound
	}
	part.QuantityOnHand += quantity
	part.Version++
	snapshot := *part
	return &snapshot, nil
}

func (m *mockStore) InsertUsageRecord(ctx context.Context, record *UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}

	part, ok := m.parts[record.PartID]
	if !ok {
		return ErrPartNotFound
	}
	if part.QuantityOnHand < record.Quantity {
		return ErrStockConflict
	}

	part.QuantityOnHand -= record.Quantity
	part.Version++
	m.records[record.ID] = record
	return nil
}

func (m *mockStore) GetUsageRecord(ctx context.Context, id uuid.UUID) (*UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return nil, ErrUsageRecordNotFound
	}
	return record, nil
}

func (m *mockStore) ListUsageByTicket(ctx context.Context, ticketID uuid.UUID) ([]*UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []*UsageRecord
	for _, r := range m.records {
		if r.TicketID == ticketID {
			records = append(records, r)
		}
	}
	return records, nil
}

func (m *mockStore) DeleteUsageRecord(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return ErrUsageRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockStore) stockOf(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parts[id].QuantityOnHand
}

func (m *mockStore) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type mockPublisher struct {
	mu    sync.Mutex
	lines []ShortfallLine
}

func (p *mockPublisher) SuggestPurchaseOrderLine(ctx context.Context, line ShortfallLine) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
	return nil
}

type failingActivity struct{}

func (failingActivity) Record(ctx context.Context, activityType, subjectType string, subjectID uuid.UUID, actor, description string, metadata map[string]interface{}) error {
	return errors.New("activity feed unavailable")
}

func newTestService(store Store, publisher ShortfallPublisher) Service {
	return NewService(store, nil, nil, publisher, failingActivity{}, zap.NewNop())
}

func TestRecordUsageFulfilledAtBoundary(t *testing.T) {
	part := testPart(10)
	store := newMockStore(part)
	svc := newTestService(store, &mockPublisher{})

	result, err := svc.RecordUsage(context.Background(), testRequest(part, 10), "tech@liftops.dev")
	require.NoError(t, err)

	assert.Equal(t, OutcomeFulfilled, result.Decision.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, 10, result.Record.Quantity)
	assert.Equal(t, "tech@liftops.dev", result.Record.Actor)
	assert.Equal(t, 0, store.stockOf(part.ID), "stock may reach exactly zero")
}

func TestRecordUsageShortfallRoutesAndDoesNotCommit(t *testing.T) {
	part := testPart(3)
	store := newMockStore(part)
	publisher := &mockPublisher{}
	svc := newTestService(store, publisher)

	req := testRequest(part, 5)
	result, err := svc.RecordUsage(context.Background(), req, "tech@liftops.dev")
	require.NoError(t, err)

	assert.Equal(t, OutcomeShortfall, result.Decision.Outcome)
	assert.Nil(t, result.Record)
	require.NotNil(t, result.Decision.Shortfall)
	assert.Equal(t, 2, result.Decision.Shortfall.Quantity)

	require.Len(t, publisher.lines, 1)
	assert.Equal(t, part.ID, publisher.lines[0].PartID)
	assert.Equal(t, req.TicketID, publisher.lines[0].TicketID)
	assert.Equal(t, 2, publisher.lines[0].Quantity)

	assert.Equal(t, 3, store.stockOf(part.ID), "shortfall must not touch stock")
	assert.Equal(t, 0, store.recordCount(), "shortfall must not persist a record")
}

func TestRecordUsageZeroStock(t *testing.T) {
	part := testPart(0)
	store := newMockStore(part)
	publisher := &mockPublisher{}
	svc := newTestService(store, publisher)

	result, err := svc.RecordUsage(context.Background(), testRequest(part, 1), "tech@liftops.dev")
	require.NoError(t, err)

	assert.Equal(t, OutcomeShortfall, result.Decision.Outcome)
	assert.Equal(t, 1, result.Decision.Shortfall.Quantity)
}

func TestRecordUsageStockConflictSurfacesUnchanged(t *testing.T) {
	part := testPart(5)
	store := newMockStore(part)
	store.insertErr = ErrStockConflict
	svc := newTestService(store, &mockPublisher{})

	_, err := svc.RecordUsage(context.Background(), testRequest(part, 2), "tech@liftops.dev")
	assert.ErrorIs(t, err, ErrStockConflict)
	assert.Equal(t, 0, store.recordCount(), "no record on a rejected commit")
}

func TestRecordUsageOtherPersistFailureIsWrapped(t *testing.T) {
	part := testPart(5)
	store := newMockStore(part)
	store.insertErr = errors.New("connection reset")
	svc := newTestService(store, &mockPublisher{})

	_, err := svc.RecordUsage(context.Background(), testRequest(part, 2), "tech@liftops.dev")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStockConflict)
	assert.Contains(t, err.Error(), "failed to persist usage record")
}

func TestRecordUsageRejectsInvalidQuantityBeforeStoreAccess(t *testing.T) {
	part := testPart(5)
	store := newMockStore(part)
	svc := newTestService(store, &mockPublisher{})

	for _, qty := range []int{0, -1} {
		_, err := svc.RecordUsage(context.Background(), testRequest(part, qty), "tech@liftops.dev")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Equal(t, 0, store.getPartCalls, "invalid input must be rejected before any store access")
}

func TestRecordUsageUnknownPart(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, &mockPublisher{})

	req := UsageRequest{PartID: uuid.New(), TicketID: uuid.New(), Quantity: 1}
	_, err := svc.RecordUsage(context.Background(), req, "tech@liftops.dev")
	assert.ErrorIs(t, err, ErrPartNotFound)
}

func TestRecordUsageActivityFailureNeverPropagates(t *testing.T) {
	part := testPart(10)
	store := newMockStore(part)
	svc := newTestService(store, &mockPublisher{})

	result, err := svc.RecordUsage(context.Background(), testRequest(part, 1), "tech@liftops.dev")
	require.NoError(t, err, "activity feed failures are best-effort")
	require.NotNil(t, result.Record)
}

func TestConcurrentUsageNeverOversells(t *testing.T) {
	initialStock := 20
	totalRequests := 50

	part := testPart(initialStock)
	store := newMockStore(part)
	svc := newTestService(store, &mockPublisher{})

	var committed, declined atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := UsageRequest{PartID: part.ID, TicketID: uuid.New(), Quantity: 1}
			result, err := svc.RecordUsage(context.Background(), req, "tech@liftops.dev")
			switch {
			case err == nil && result.Record != nil:
				committed.Add(1)
			default:
				// Shortfall decision or commit-time conflict: either way
				// the store refused to go below zero.
				declined.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(initialStock), committed.Load())
	assert.Equal(t, int32(totalRequests-initialStock), declined.Load())
	assert.Equal(t, 0, store.stockOf(part.ID))
	assert.Equal(t, initialStock, store.recordCount())
}

func TestDeleteUsageRecordDoesNotRestoreStock(t *testing.T) {
	part := testPart(10)
	store := newMockStore(part)
	svc := newTestService(store, &mockPublisher{})

	result, err := svc.RecordUsage(context.Background(), testRequest(part, 4), "tech@liftops.dev")
	require.NoError(t, err)
	require.Equal(t, 6, store.stockOf(part.ID))

	err = svc.DeleteUsageRecord(context.Background(), result.Record.ID, "admin@liftops.dev")
	require.NoError(t, err)

	assert.Equal(t, 0, store.recordCount())
	assert.Equal(t, 6, store.stockOf(part.ID), "deletion is asymmetric: stock stays decremented")
}

func TestRestockRejectsNonPositiveQuantity(t *testing.T) {
	part := testPart(1)
	store := newMockStore(part)
	svc := newTestService(store, &mockPublisher{})

	_, err := svc.RestockPart(context.Background(), part.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestEvaluateUsageHasNoSideEffects(t *testing.T) {
	part := testPart(3)
	store := newMockStore(part)
	publisher := &mockPublisher{}
	svc := newTestService(store, publisher)

	decision, err := svc.EvaluateUsage(context.Background(), testRequest(part, 5))
	require.NoError(t, err)

	assert.Equal(t, OutcomeShortfall, decision.Outcome)
	assert.Empty(t, publisher.lines, "evaluate must not route to replenishment")
	assert.Equal(t, 3, store.stockOf(part.ID))
	assert.Equal(t, 0, store.recordCount())
}
