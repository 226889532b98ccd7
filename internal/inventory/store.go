// internal/inventory/store.go
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrPartNotFound        = errors.New("part not found")
	ErrUsageRecordNotFound = errors.New("usage record not found")

	// ErrStockConflict means the conditional decrement touched zero rows:
	// stock dropped below the requested quantity between the caller's read
	// and the write. Distinguishable from other persist failures so the
	// caller can re-evaluate instead of aborting blindly.
	ErrStockConflict = errors.New("insufficient stock detected at commit time")
)

// PostgresStore implements Store against the shared read-model database.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("liftops/inventory"),
	}
}

func (s *PostgresStore) InsertPart(ctx context.Context, part *Part) error {
	query := `
		INSERT INTO parts (id, sku, name, category, unit_price, quantity_on_hand, min_stock_level, reorder_point, location, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		part.ID, part.SKU, part.Name, string(part.Category), part.UnitPrice,
		part.QuantityOnHand, part.MinStockLevel, part.ReorderPoint, part.Location, part.Version,
	)
	return err
}

func (s *PostgresStore) GetPart(ctx context.Context, id uuid.UUID) (*Part, error) {
	query := `
		SELECT id, sku, name, category, unit_price, quantity_on_hand, min_stock_level, reorder_point, location, version, created_at, updated_at
		FROM parts
		WHERE id = $1
	`
	part := &Part{}
	var category string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&part.ID,
		&part.SKU,
		&part.Name,
		&category,
		&part.UnitPrice,
		&part.QuantityOnHand,
		&part.MinStockLevel,
		&part.ReorderPoint,
		&part.Location,
		&part.Version,
		&part.CreatedAt,
		&part.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPartNotFound
		}
		return nil, fmt.Errorf("failed to get part: %w", err)
	}

	// Tags are validated at the store-read boundary, not trusted implicitly.
	part.Category = NormalizePartCategory(category)
	return part, nil
}

func (s *PostgresStore) ListLowStock(ctx context.Context) ([]*Part, error) {
	query := `
		SELECT id, sku, name, category, unit_price, quantity_on_hand, min_stock_level, reorder_point, location, version, created_at, updated_at
		FROM parts
		WHERE quantity_on_hand <= reorder_point
		ORDER BY quantity_on_hand ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock parts: %w", err)
	}
	defer rows.Close()

	var parts []*Part
	for rows.Next() {
		part := &Part{}
		var category string
		if err := rows.Scan(
			&part.ID, &part.SKU, &part.Name, &category, &part.UnitPrice,
			&part.QuantityOnHand, &part.MinStockLevel, &part.ReorderPoint,
			&part.Location, &part.Version, &part.CreatedAt, &part.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		part.Category = NormalizePartCategory(category)
		parts = append(parts, part)
	}

	return parts, rows.Err()
}

func (s *PostgresStore) AddStock(ctx context.Context, id uuid.UUID, quantity int) (*Part, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE parts
		SET quantity_on_hand = quantity_on_hand + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
	`, quantity, id)
	if err != nil {
		return nil, fmt.Errorf("failed to add stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrPartNotFound
	}

	return s.GetPart(ctx, id)
}

// InsertUsageRecord is the authoritative commit: the record insert and the
// stock decrement happen in one transaction, and the decrement only applies
// while quantity_on_hand >= requested. Zero rows affected means a concurrent
// writer consumed the stock first.
func (s *PostgresStore) InsertUsageRecord(ctx context.Context, record *UsageRecord) error {
	ctx, span := s.tracer.Start(ctx, "inventory.commit_usage",
		trace.WithAttributes(
			attribute.String("part.id", record.PartID.String()),
			attribute.String("ticket.id", record.TicketID.String()),
			attribute.Int("quantity", record.Quantity),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE parts
		SET quantity_on_hand = quantity_on_hand - $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND quantity_on_hand >= $1
	`, record.Quantity, record.PartID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return ErrStockConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_records (id, part_id, ticket_id, quantity, unit_price, note, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, record.ID, record.PartID, record.TicketID, record.Quantity, record.UnitPrice, record.Note, record.Actor, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Bool("commit.success", true))
	return nil
}

func (s *PostgresStore) GetUsageRecord(ctx context.Context, id uuid.UUID) (*UsageRecord, error) {
	query := `
		SELECT id, part_id, ticket_id, quantity, unit_price, note, actor, created_at
		FROM usage_records
		WHERE id = $1
	`
	record := &UsageRecord{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.PartID, &record.TicketID, &record.Quantity,
		&record.UnitPrice, &record.Note, &record.Actor, &record.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUsageRecordNotFound
		}
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListUsageByTicket(ctx context.Context, ticketID uuid.UUID) ([]*UsageRecord, error) {
	query := `
		SELECT id, part_id, ticket_id, quantity, unit_price, note, actor, created_at
		FROM usage_records
		WHERE ticket_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	defer rows.Close()

	var records []*UsageRecord
	for rows.Next() {
		record := &UsageRecord{}
		if err := rows.Scan(
			&record.ID, &record.PartID, &record.TicketID, &record.Quantity,
			&record.UnitPrice, &record.Note, &record.Actor, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// DeleteUsageRecord removes the record only. Stock is not restored: the
// decrement at commit time is deliberately asymmetric with deletion.
func (s *PostgresStore) DeleteUsageRecord(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM usage_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete usage record: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUsageRecordNotFound
	}
	return nil
}
