// internal/procurement/consumer.go
package procurement

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"liftops/internal/inventory"
	"liftops/internal/messaging"
)

// ShortfallConsumer drains the replenishment queue into SuggestLine.
type ShortfallConsumer struct {
	service Service
	logger  *zap.Logger
}

func NewShortfallConsumer(service Service, logger *zap.Logger) *ShortfallConsumer {
	return &ShortfallConsumer{service: service, logger: logger}
}

// Run processes deliveries until the channel closes. Malformed messages are
// dropped; transient store failures requeue for retry. SuggestLine is
// idempotent per part and ticket pair, so redelivery is safe.
func (c *ShortfallConsumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for msg := range deliveries {
		var suggestion messaging.ReplenishmentMessage
		if err := json.Unmarshal(msg.Body, &suggestion); err != nil {
			c.logger.Warn("dropping malformed replenishment message", zap.Error(err))
			msg.Nack(false, false)
			continue
		}

		line := inventory.ShortfallLine{
			PartID:   suggestion.PartID,
			TicketID: suggestion.TicketID,
			Quantity: suggestion.Quantity,
		}

		if err := c.service.SuggestLine(ctx, line); err != nil {
			if errors.Is(err, ErrInvalidQuantity) {
				c.logger.Warn("dropping replenishment suggestion with invalid quantity",
					zap.String("part_id", suggestion.PartID.String()),
					zap.Int("quantity", suggestion.Quantity))
				msg.Nack(false, false)
				continue
			}
			c.logger.Error("failed to process replenishment suggestion",
				zap.String("part_id", suggestion.PartID.String()),
				zap.Error(err))
			msg.Nack(false, true)
			continue
		}

		msg.Ack(false)
	}

	c.logger.Info("replenishment consumer stopped")
}
