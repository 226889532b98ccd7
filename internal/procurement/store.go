// internal/procurement/store.go
package procurement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrSupplierNotFound      = errors.New("supplier not found")
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")
)

// PostgresStore is the SQL-backed persistence layer for procurement.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("liftops/procurement"),
	}
}

func (s *PostgresStore) InsertSupplier(ctx context.Context, supplier *Supplier) error {
	ctx, span := s.tracer.Start(ctx, "InsertSupplier")
	defer span.End()

	query := `
		INSERT INTO suppliers (id, name, contact_email, phone, lead_time_days, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query, supplier.ID, supplier.Name, supplier.ContactEmail, supplier.Phone, supplier.LeadTimeDays, supplier.Notes, supplier.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert supplier: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	query := `
		SELECT id, name, contact_email, phone, lead_time_days, notes, created_at
		FROM suppliers
		WHERE id = $1
	`
	supplier := &Supplier{}
	var phone, notes sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&supplier.ID, &supplier.Name, &supplier.ContactEmail, &phone,
		&supplier.LeadTimeDays, &notes, &supplier.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	supplier.Phone = phone.String
	supplier.Notes = notes.String
	return supplier, nil
}

func (s *PostgresStore) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	query := `
		SELECT id, name, contact_email, phone, lead_time_days, notes, created_at
		FROM suppliers
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*Supplier
	for rows.Next() {
		supplier := &Supplier{}
		var phone, notes sql.NullString
		if err := rows.Scan(
			&supplier.ID, &supplier.Name, &supplier.ContactEmail, &phone,
			&supplier.LeadTimeDays, &notes, &supplier.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		supplier.Phone = phone.String
		supplier.Notes = notes.String
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}

func (s *PostgresStore) InsertPurchaseOrder(ctx context.Context, order *PurchaseOrder) error {
	ctx, span := s.tracer.Start(ctx, "InsertPurchaseOrder")
	defer span.End()

	query := `
		INSERT INTO purchase_orders (id, supplier_id, status, origin, notes, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query, order.ID, order.SupplierID, string(order.Status), string(order.Origin), order.Notes, order.Version, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert purchase order: %w", err)
	}
	return nil
}

const orderSelect = `
	SELECT id, supplier_id, status, origin, notes, issued_at, version, created_at, updated_at
	FROM purchase_orders
`

func (s *PostgresStore) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	ctx, span := s.tracer.Start(ctx, "GetPurchaseOrder")
	defer span.End()

	order, err := s.scanOrder(s.db.QueryRowContext(ctx, orderSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	if err := s.loadLines(ctx, order); err != nil {
		return nil, err
	}
	order.Total = order.ComputeTotal()
	return order, nil
}

func (s *PostgresStore) ListPurchaseOrders(ctx context.Context) ([]*PurchaseOrder, error) {
	rows, err := s.db.QueryContext(ctx, orderSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []*PurchaseOrder
	for rows.Next() {
		order, err := s.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *PostgresStore) GetOpenReplenishmentDraft(ctx context.Context) (*PurchaseOrder, error) {
	query := orderSelect + `
		WHERE status = 'draft' AND origin = 'replenishment'
		ORDER BY created_at
		LIMIT 1
	`
	order, err := s.scanOrder(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("failed to get replenishment draft: %w", err)
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresStore) scanOrder(row rowScanner) (*PurchaseOrder, error) {
	order := &PurchaseOrder{}
	var status, origin string
	var notes sql.NullString
	var issuedAt sql.NullTime
	err := row.Scan(
		&order.ID, &order.SupplierID, &status, &origin, &notes,
		&issuedAt, &order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = NormalizeOrderStatus(status)
	order.Origin = OrderOrigin(origin)
	order.Notes = notes.String
	if issuedAt.Valid {
		t := issuedAt.Time
		order.IssuedAt = &t
	}
	return order, nil
}

func (s *PostgresStore) loadLines(ctx context.Context, order *PurchaseOrder) error {
	query := `
		SELECT id, purchase_order_id, part_id, ticket_id, quantity, unit_price, created_at
		FROM purchase_order_lines
		WHERE purchase_order_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := &PurchaseOrderLine{}
		if err := rows.Scan(
			&line.ID, &line.PurchaseOrderID, &line.PartID, &line.TicketID,
			&line.Quantity, &line.UnitPrice, &line.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func (s *PostgresStore) InsertLine(ctx context.Context, line *PurchaseOrderLine) error {
	ctx, span := s.tracer.Start(ctx, "InsertLine")
	defer span.End()

	query := `
		INSERT INTO purchase_order_lines (id, purchase_order_id, part_id, ticket_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query, line.ID, line.PurchaseOrderID, line.PartID, line.TicketID, line.Quantity, line.UnitPrice, line.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order line: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasLine(ctx context.Context, orderID, partID uuid.UUID, ticketID uuid.NullUUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM purchase_order_lines
			WHERE purchase_order_id = $1 AND part_id = $2 AND ticket_id IS NOT DISTINCT FROM $3
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, orderID, partID, ticketID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for existing line: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) SetSupplier(ctx context.Context, orderID, supplierID uuid.UUID, version int) error {
	query := `
		UPDATE purchase_orders
		SET supplier_id = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3 AND status = 'draft'
	`
	result, err := s.db.ExecContext(ctx, query, supplierID, orderID, version)
	if err != nil {
		return fmt.Errorf("failed to set supplier: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPurchaseOrderNotFound
	}
	return nil
}

func (s *PostgresStore) MarkIssued(ctx context.Context, orderID uuid.UUID, version int) error {
	query := `
		UPDATE purchase_orders
		SET status = 'issued', issued_at = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3 AND status = 'draft'
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), orderID, version)
	if err != nil {
		return fmt.Errorf("failed to mark order issued: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPurchaseOrderNotFound
	}
	return nil
}
