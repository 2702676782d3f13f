package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExpiry(t *testing.T) {
	purchase := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("uses fixed 30 day months", func(t *testing.T) {
		expiry, err := ComputeExpiry(purchase, 12)
		require.NoError(t, err)
		assert.Equal(t, purchase.Add(360*24*time.Hour), expiry)
	})

	t.Run("single month", func(t *testing.T) {
		expiry, err := ComputeExpiry(purchase, 1)
		require.NoError(t, err)
		assert.Equal(t, purchase.Add(30*24*time.Hour), expiry)
	})

	t.Run("rejects out of range durations", func(t *testing.T) {
		for _, months := range []int{0, -1, 121} {
			_, err := ComputeExpiry(purchase, months)
			assert.Error(t, err, "months=%d", months)
		}
	})

	t.Run("accepts the bounds", func(t *testing.T) {
		for _, months := range []int{MinWarrantyMonths, MaxWarrantyMonths} {
			_, err := ComputeExpiry(purchase, months)
			assert.NoError(t, err, "months=%d", months)
		}
	})
}

func TestCoverageStateAt(t *testing.T) {
	expiry := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want CoverageState
	}{
		{"well before expiry", expiry.Add(-90 * 24 * time.Hour), CoverageActive},
		{"exactly 30 days out", expiry.Add(-ExpiringSoonWindow), CoverageActive},
		{"inside the warning window", expiry.Add(-29 * 24 * time.Hour), CoverageExpiringSoon},
		{"one second left", expiry.Add(-time.Second), CoverageExpiringSoon},
		{"exact expiry instant", expiry, CoverageExpired},
		{"after expiry", expiry.Add(time.Hour), CoverageExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoverageStateAt(expiry, tt.now))
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	expiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, DaysRemaining(expiry, expiry.Add(-10*24*time.Hour)))
	assert.Equal(t, 0, DaysRemaining(expiry, expiry))
	assert.Equal(t, 0, DaysRemaining(expiry, expiry.Add(time.Hour)))
	assert.Equal(t, 0, DaysRemaining(expiry, expiry.Add(-time.Hour)))
}

func TestTicketStatusTerminal(t *testing.T) {
	assert.True(t, TicketStatusCompleted.Terminal())
	assert.True(t, TicketStatusClosed.Terminal())
	assert.True(t, TicketStatusRejected.Terminal())
	assert.False(t, TicketStatusOpen.Terminal())
	assert.False(t, TicketStatusInProgress.Terminal())
	assert.False(t, TicketStatusWaitingForParts.Terminal())
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, TicketPriorityUrgent.Rank(), TicketPriorityHigh.Rank())
	assert.Greater(t, TicketPriorityHigh.Rank(), TicketPriorityMedium.Rank())
	assert.Greater(t, TicketPriorityMedium.Rank(), TicketPriorityLow.Rank())
	assert.False(t, ValidTicketPriority(TicketPriority("whenever")))
}
