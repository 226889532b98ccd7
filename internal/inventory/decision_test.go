// internal/inventory/decision_test.go
package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testPart(onHand int) *Part {
	return &Part{
		ID:             uuid.New(),
		SKU:            "DOOR-ROLLER-01",
		Name:           "Door roller",
		Category:       CategoryDoor,
		QuantityOnHand: onHand,
	}
}

func testRequest(part *Part, qty int) UsageRequest {
	return UsageRequest{
		PartID:   part.ID,
		TicketID: uuid.New(),
		Quantity: qty,
	}
}

func TestEvaluateFulfilled(t *testing.T) {
	tests := []struct {
		name   string
		onHand int
		qty    int
	}{
		{"plenty of stock", 10, 3},
		{"exactly one left", 1, 1},
		{"boundary: request equals stock", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := testPart(tt.onHand)
			decision, err := Evaluate(part, testRequest(part, tt.qty))
			require.NoError(t, err)

			assert.Equal(t, OutcomeFulfilled, decision.Outcome)
			assert.True(t, decision.Fulfilled())
			assert.Nil(t, decision.Shortfall)
			assert.Equal(t, tt.qty, decision.Request.Quantity)
		})
	}
}

func TestEvaluateShortfall(t *testing.T) {
	tests := []struct {
		name          string
		onHand        int
		qty           int
		wantShortfall int
	}{
		{"partial stock", 3, 5, 2},
		{"no stock at all", 0, 1, 1},
		{"one short", 9, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := testPart(tt.onHand)
			req := testRequest(part, tt.qty)
			decision, err := Evaluate(part, req)
			require.NoError(t, err)

			assert.Equal(t, OutcomeShortfall, decision.Outcome)
			assert.False(t, decision.Fulfilled())
			require.NotNil(t, decision.Shortfall)
			assert.Equal(t, tt.wantShortfall, decision.Shortfall.Quantity)
			assert.Equal(t, part.ID, decision.Shortfall.PartID)
			assert.Equal(t, req.TicketID, decision.Shortfall.TicketID)
		})
	}
}

func TestEvaluateRejectsNonPositiveQuantity(t *testing.T) {
	part := testPart(10)

	for _, qty := range []int{0, -1, -100} {
		_, err := Evaluate(part, testRequest(part, qty))
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", qty)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	part := testPart(7)
	req := testRequest(part, 9)

	first, err := Evaluate(part, req)
	require.NoError(t, err)
	second, err := Evaluate(part, req)
	require.NoError(t, err)

	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Equal(t, first.Shortfall.Quantity, second.Shortfall.Quantity)
	assert.Equal(t, part.QuantityOnHand, 7, "evaluate must not mutate stock")
}

// Property: for any positive request against any non-negative stock level,
// the decision is fulfilled exactly when the request fits, and a shortfall
// always equals requested minus on-hand.
func TestEvaluateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		onHand := rapid.IntRange(0, 1_000_000).Draw(t, "onHand")
		qty := rapid.IntRange(1, 1_000_000).Draw(t, "qty")

		part := testPart(onHand)
		decision, err := Evaluate(part, testRequest(part, qty))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if qty <= onHand {
			if decision.Outcome != OutcomeFulfilled {
				t.Fatalf("qty %d <= onHand %d must be fulfilled, got %s", qty, onHand, decision.Outcome)
			}
			if decision.Shortfall != nil {
				t.Fatalf("fulfilled decision must not carry a shortfall")
			}
		} else {
			if decision.Outcome != OutcomeShortfall {
				t.Fatalf("qty %d > onHand %d must be a shortfall, got %s", qty, onHand, decision.Outcome)
			}
			if decision.Shortfall.Quantity != qty-onHand {
				t.Fatalf("shortfall %d, want %d", decision.Shortfall.Quantity, qty-onHand)
			}
		}
	})
}

func TestEvaluatePropertyNonPositiveAlwaysRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		onHand := rapid.IntRange(0, 1000).Draw(t, "onHand")
		qty := rapid.IntRange(-1000, 0).Draw(t, "qty")

		part := testPart(onHand)
		_, err := Evaluate(part, testRequest(part, qty))
		if err != ErrInvalidQuantity {
			t.Fatalf("expected ErrInvalidQuantity for qty %d, got %v", qty, err)
		}
	})
}

func TestNormalizePartCategory(t *testing.T) {
	assert.Equal(t, CategoryTraction, NormalizePartCategory("traction"))
	assert.Equal(t, CategoryOther, NormalizePartCategory("other"))
	assert.Equal(t, CategoryOther, NormalizePartCategory(""))
	assert.Equal(t, CategoryOther, NormalizePartCategory("free-form UI tag"))
}
