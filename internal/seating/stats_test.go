package seating_test

import (
	"testing"

	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/seating"
	"github.com/stretchr/testify/assert"
)

func TestComputeStatsDedupesDoubleReferencedGuest(t *testing.T) {
	// A guest referenced by two tables (possible only via historical bad
	// writes) must count once toward the plan-wide assigned total.
	plan := &domain.SeatingPlan{
		Width:  1000,
		Height: 800,
		Tables: []domain.Table{
			{ID: "a", Capacity: 8, GuestIDs: []string{"g"}},
			{ID: "b", Capacity: 8, GuestIDs: []string{"g"}},
		},
	}
	guests := []domain.Guest{{ID: "g", PartySize: 3}}

	stats := seating.ComputeStats(plan, guests)
	assert.Equal(t, 3, stats.AssignedSeatCount)
	assert.Equal(t, 3, stats.TotalSeatCount)
	assert.Equal(t, 0, stats.UnassignedSeatCount)
	assert.Empty(t, stats.UnassignedGuests)

	// Per-table occupancy still counts the guest at both tables.
	assert.Equal(t, 3, stats.Tables[0].OccupiedSeats)
	assert.Equal(t, 3, stats.Tables[1].OccupiedSeats)
}

func TestComputeStatsIgnoresUnknownGuestIDs(t *testing.T) {
	plan := &domain.SeatingPlan{
		Tables: []domain.Table{
			{ID: "a", Capacity: 8, GuestIDs: []string{"gone", "g"}},
		},
	}
	guests := []domain.Guest{{ID: "g", PartySize: 2}}

	stats := seating.ComputeStats(plan, guests)
	assert.Equal(t, 2, stats.Tables[0].OccupiedSeats)
	assert.Equal(t, 6, stats.Tables[0].RemainingSeats)
	assert.Equal(t, 2, stats.AssignedSeatCount)
}

func TestComputeStatsUnassignedGuests(t *testing.T) {
	plan := &domain.SeatingPlan{
		Tables: []domain.Table{
			{ID: "a", Capacity: 4, GuestIDs: []string{"g"}},
		},
	}
	guests := []domain.Guest{
		{ID: "g", PartySize: 2},
		{ID: "h", PartySize: 3},
	}

	stats := seating.ComputeStats(plan, guests)
	assert.Equal(t, 5, stats.TotalSeatCount)
	assert.Equal(t, 2, stats.AssignedSeatCount)
	assert.Equal(t, 3, stats.UnassignedSeatCount)
	if assert.Len(t, stats.UnassignedGuests, 1) {
		assert.Equal(t, "h", stats.UnassignedGuests[0].ID)
	}
}

func TestComputeStatsEmptyPlan(t *testing.T) {
	stats := seating.ComputeStats(&domain.SeatingPlan{}, nil)
	assert.Empty(t, stats.Tables)
	assert.Equal(t, 0, stats.TotalSeatCount)
	assert.Empty(t, stats.UnassignedGuests)
}
