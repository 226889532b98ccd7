// internal/messaging/replenishment.go
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"liftops/internal/inventory"
)

// ReplenishmentQueue carries shortfall suggestions from the inventory
// service to the procurement consumer.
const ReplenishmentQueue = "replenishment.suggested"

// ReplenishmentMessage is the wire format for one suggested purchase
// order line. Quantity is the shortfall, not the full requested amount.
type ReplenishmentMessage struct {
	PartID   uuid.UUID `json:"part_id"`
	TicketID uuid.UUID `json:"ticket_id"`
	Quantity int       `json:"quantity"`
}

// ReplenishmentPublisher forwards shortfall lines onto the replenishment
// queue. It satisfies the inventory service's publisher dependency.
type ReplenishmentPublisher struct {
	mq     *RabbitMQ
	logger *zap.Logger
}

func NewReplenishmentPublisher(mq *RabbitMQ, logger *zap.Logger) (*ReplenishmentPublisher, error) {
	if err := mq.DeclareQueue(ReplenishmentQueue); err != nil {
		return nil, err
	}
	return &ReplenishmentPublisher{mq: mq, logger: logger}, nil
}

func (p *ReplenishmentPublisher) SuggestPurchaseOrderLine(ctx context.Context, line inventory.ShortfallLine) error {
	body, err := json.Marshal(ReplenishmentMessage{
		PartID:   line.PartID,
		TicketID: line.TicketID,
		Quantity: line.Quantity,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal replenishment message: %w", err)
	}

	if err := p.mq.Publish(ctx, ReplenishmentQueue, body); err != nil {
		return err
	}

	p.logger.Info("published replenishment suggestion",
		zap.String("part_id", line.PartID.String()),
		zap.String("ticket_id", line.TicketID.String()),
		zap.Int("quantity", line.Quantity))
	return nil
}
