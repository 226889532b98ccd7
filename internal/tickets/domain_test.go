// internal/tickets/domain_test.go
package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTicketStatus(t *testing.T) {
	assert.Equal(t, StatusOpen, NormalizeTicketStatus("open"))
	assert.Equal(t, StatusAwaitingParts, NormalizeTicketStatus("awaiting_parts"))
	assert.Equal(t, StatusOther, NormalizeTicketStatus("snoozed"))
	assert.Equal(t, StatusOther, NormalizeTicketStatus(""))
}

func TestNormalizeTicketPriorityFallsBackToNormal(t *testing.T) {
	assert.Equal(t, PriorityEmergency, NormalizeTicketPriority("emergency"))
	assert.Equal(t, PriorityNormal, NormalizeTicketPriority("urgent-ish"))
	assert.Equal(t, PriorityNormal, NormalizeTicketPriority(""))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusResolved.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusOpen.Terminal())
	assert.False(t, StatusAwaitingParts.Terminal())
}
