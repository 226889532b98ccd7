// internal/procurement/implementation_test.go
package procurement

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"liftops/internal/inventory"
)

// mockStore is an in-memory Store used to exercise the service logic
// without a database.
type mockStore struct {
	mu        sync.Mutex
	suppliers map[uuid.UUID]*Supplier
	orders    map[uuid.UUID]*PurchaseOrder
	lines     map[uuid.UUID][]*PurchaseOrderLine
}

func newMockStore() *mockStore {
	return &mockStore{
		suppliers: make(map[uuid.UUID]*Supplier),
		orders:    make(map[uuid.UUID]*PurchaseOrder),
		lines:     make(map[uuid.UUID][]*PurchaseOrderLine),
	}
}

func (m *mockStore) InsertSupplier(_ context.Context, supplier *Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppliers[supplier.ID] = supplier
	return nil
}

func (m *mockStore) GetSupplier(_ context.Context, id uuid.UUID) (*Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	supplier, ok := m.suppliers[id]
	if !ok {
		return nil, ErrSupplierNotFound
	}
	return supplier, nil
}

func (m *mockStore) ListSuppliers(_ context.Context) ([]*Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Supplier
	for _, s := range m.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStore) InsertPurchaseOrder(_ context.Context, order *PurchaseOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockStore) GetPurchaseOrder(_ context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, ErrPurchaseOrderNotFound
	}
	copied := *order
	copied.Lines = append([]*PurchaseOrderLine(nil), m.lines[id]...)
	copied.Total = copied.ComputeTotal()
	return &copied, nil
}

func (m *mockStore) ListPurchaseOrders(_ context.Context) ([]*PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*PurchaseOrder
	for _, o := range m.orders {
		copied := *o
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) GetOpenReplenishmentDraft(_ context.Context) (*PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.Status == OrderDraft && o.Origin == OriginReplenishment {
			copied := *o
			return &copied, nil
		}
	}
	return nil, ErrPurchaseOrderNotFound
}

func (m *mockStore) InsertLine(_ context.Context, line *PurchaseOrderLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[line.PurchaseOrderID] = append(m.lines[line.PurchaseOrderID], line)
	return nil
}

func (m *mockStore) HasLine(_ context.Context, orderID, partID uuid.UUID, ticketID uuid.NullUUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range m.lines[orderID] {
		if line.PartID == partID && line.TicketID == ticketID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) SetSupplier(_ context.Context, orderID, supplierID uuid.UUID, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok || order.Version != version {
		return ErrPurchaseOrderNotFound
	}
	order.SupplierID = uuid.NullUUID{UUID: supplierID, Valid: true}
	order.Version++
	return nil
}

func (m *mockStore) MarkIssued(_ context.Context, orderID uuid.UUID, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok || order.Version != version || order.Status != OrderDraft {
		return ErrPurchaseOrderNotFound
	}
	order.Status = OrderIssued
	order.Version++
	return nil
}

func (m *mockStore) lineCount(orderID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines[orderID])
}

// mockCatalog prices parts from a fixed map.
type mockCatalog struct {
	prices map[uuid.UUID]decimal.NullDecimal
}

func (m *mockCatalog) GetPart(_ context.Context, id uuid.UUID) (*inventory.Part, error) {
	price, ok := m.prices[id]
	if !ok {
		return nil, inventory.ErrPartNotFound
	}
	return &inventory.Part{ID: id, UnitPrice: price}, nil
}

type mockRenderer struct {
	mu    sync.Mutex
	calls int
}

func (m *mockRenderer) RenderPurchaseOrder(_ context.Context, _ interface{}) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return []byte("%PDF-1.4 stub"), nil
}

type sentMail struct {
	to         string
	attachment []byte
}

type mockMail struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *mockMail) Send(_ context.Context, to, _, _ string, attachment []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, attachment: attachment})
	return nil
}

func newTestService(store Store, catalog PartCatalog) Service {
	renderer := &mockRenderer{}
	mail := &mockMail{}
	return NewService(store, nil, catalog, renderer, mail, nil, zap.NewNop())
}

func price(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestSuggestLineOpensReplenishmentDraft(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, &mockCatalog{prices: map[uuid.UUID]decimal.NullDecimal{}})

	line := inventory.ShortfallLine{PartID: uuid.New(), TicketID: uuid.New(), Quantity: 3}
	require.NoError(t, svc.SuggestLine(context.Background(), line))

	draft, err := store.GetOpenReplenishmentDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OrderDraft, draft.Status)
	assert.Equal(t, OriginReplenishment, draft.Origin)
	assert.False(t, draft.SupplierID.Valid)
	assert.Equal(t, 1, store.lineCount(draft.ID))
}

func TestSuggestLineDropsDuplicatePartTicketPair(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, &mockCatalog{prices: map[uuid.UUID]decimal.NullDecimal{}})

	line := inventory.ShortfallLine{PartID: uuid.New(), TicketID: uuid.New(), Quantity: 2}
	require.NoError(t, svc.SuggestLine(context.Background(), line))
	require.NoError(t, svc.SuggestLine(context.Background(), line))

	draft, err := store.GetOpenReplenishmentDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.lineCount(draft.ID))
}

func TestSuggestLineSamePartDifferentTickets(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, &mockCatalog{prices: map[uuid.UUID]decimal.NullDecimal{}})

	partID := uuid.New()
	require.NoError(t, svc.SuggestLine(context.Background(), inventory.ShortfallLine{PartID: partID, TicketID: uuid.New(), Quantity: 2}))
	require.NoError(t, svc.SuggestLine(context.Background(), inventory.ShortfallLine{PartID: partID, TicketID: uuid.New(), Quantity: 4}))

	draft, err := store.GetOpenReplenishmentDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.lineCount(draft.ID))
}

func TestSuggestLineRejectsNonPositiveQuantity(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, &mockCatalog{prices: map[uuid.UUID]decimal.NullDecimal{}})

	err := svc.SuggestLine(context.Background(), inventory.ShortfallLine{PartID: uuid.New(), TicketID: uuid.New(), Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSuggestLinePricesFromCatalog(t *testing.T) {
	store := newMockStore()
	partID := uuid.New()
	catalog := &mockCatalog{prices: map[uuid.UUID]decimal.NullDecimal{partID: price("19.50")}}
	svc := newTestService(store, catalog)

	require.NoError(t, svc.SuggestLine(context.Background(), inventory.ShortfallLine{PartID: partID, TicketID: uuid.New(), Quantity: 2}))

	draft, err := store.GetOpenReplenishmentDraft(context.Background())
	require.NoError(t, err)
	order, err := store.GetPurchaseOrder(context.Background(), draft.ID)
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].UnitPrice.Valid)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("39.00")))
}

func TestComputeTotalIgnoresUnpricedLines(t *testing.T) {
	order := &PurchaseOrder{
		Lines: []*PurchaseOrderLine{
			{Quantity: 3, UnitPrice: price("10.00")},
			{Quantity: 5},
			{Quantity: 2, UnitPrice: price("2.25")},
		},
	}
	assert.True(t, order.ComputeTotal().Equal(decimal.RequireFromString("34.50")))
}

func TestSendPurchaseOrderIssuesAndEmails(t *testing.T) {
	store := newMockStore()
	renderer := &mockRenderer{}
	mail := &mockMail{}
	svc := NewService(store, nil, nil, renderer, mail, nil, zap.NewNop())

	supplier, err := svc.AddSupplier(context.Background(), "LiftParts GmbH", "orders@liftparts.example", "", 7, "")
	require.NoError(t, err)

	order, err := svc.CreatePurchaseOrder(context.Background(), uuid.NullUUID{UUID: supplier.ID, Valid: true}, "")
	require.NoError(t, err)

	_, err = svc.AddLine(context.Background(), order.ID, uuid.New(), 4, price("12.00"))
	require.NoError(t, err)

	issued, err := svc.SendPurchaseOrder(context.Background(), order.ID, "dispatcher")
	require.NoError(t, err)
	assert.Equal(t, OrderIssued, issued.Status)
	assert.NotNil(t, issued.IssuedAt)
	assert.Equal(t, 1, renderer.calls)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "orders@liftparts.example", mail.sent[0].to)
	assert.NotEmpty(t, mail.sent[0].attachment)

	// Issued orders are immutable.
	_, err = svc.AddLine(context.Background(), order.ID, uuid.New(), 1, decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrOrderNotDraft)

	_, err = svc.SendPurchaseOrder(context.Background(), order.ID, "dispatcher")
	assert.ErrorIs(t, err, ErrOrderNotDraft)
}

func TestSendPurchaseOrderRequiresSupplierAndLines(t *testing.T) {
	store := newMockStore()
	renderer := &mockRenderer{}
	mail := &mockMail{}
	svc := NewService(store, nil, nil, renderer, mail, nil, zap.NewNop())

	order, err := svc.CreatePurchaseOrder(context.Background(), uuid.NullUUID{}, "")
	require.NoError(t, err)

	_, err = svc.SendPurchaseOrder(context.Background(), order.ID, "dispatcher")
	assert.ErrorIs(t, err, ErrNoSupplier)

	supplier, err := svc.AddSupplier(context.Background(), "LiftParts GmbH", "orders@liftparts.example", "", 7, "")
	require.NoError(t, err)
	require.NoError(t, svc.AssignSupplier(context.Background(), order.ID, supplier.ID))

	_, err = svc.SendPurchaseOrder(context.Background(), order.ID, "dispatcher")
	assert.ErrorIs(t, err, ErrEmptyOrder)

	assert.Equal(t, 0, renderer.calls)
	assert.Empty(t, mail.sent)
}

func TestNormalizeOrderStatus(t *testing.T) {
	assert.Equal(t, OrderDraft, NormalizeOrderStatus("draft"))
	assert.Equal(t, OrderIssued, NormalizeOrderStatus("issued"))
	assert.Equal(t, OrderOther, NormalizeOrderStatus("pending"))
	assert.Equal(t, OrderOther, NormalizeOrderStatus(""))
}
