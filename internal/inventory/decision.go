// internal/inventory/decision.go
package inventory

import "errors"

// ErrInvalidQuantity rejects non-positive requested quantities before any
// store access happens.
var ErrInvalidQuantity = errors.New("requested quantity must be a positive integer")

// Evaluate decides whether a usage request can be fulfilled immediately from
// on-hand stock or must be routed to replenishment. It is pure: no side
// effects, no store access, and identical inputs always yield an identical
// decision.
//
// The result is an optimistic pre-check only. Stock may change between this
// read and a later commit; the store's conditional decrement is the
// authoritative check at commit time.
func Evaluate(part *Part, req UsageRequest) (Decision, error) {
	if req.Quantity <= 0 {
		return Decision{}, ErrInvalidQuantity
	}

	// Equality is fulfilled: stock is allowed to reach exactly zero.
	if req.Quantity <= part.QuantityOnHand {
		return Decision{
			Outcome: OutcomeFulfilled,
			Request: req,
		}, nil
	}

	return Decision{
		Outcome: OutcomeShortfall,
		Request: req,
		Shortfall: &ShortfallLine{
			PartID:   part.ID,
			TicketID: req.TicketID,
			Quantity: req.Quantity - part.QuantityOnHand,
		},
	}, nil
}
