package seating

import "github.com/robertarktes/wedding-invites-and-seating/internal/domain"

type TableStats struct {
	TableID        string `json:"tableId"`
	Label          string `json:"label"`
	Capacity       int    `json:"capacity"`
	OccupiedSeats  int    `json:"occupiedSeats"`
	RemainingSeats int    `json:"remainingSeats"`
	OverCapacity   bool   `json:"overCapacity"`
}

type PlanStats struct {
	Tables              []TableStats   `json:"tables"`
	TotalSeatCount      int            `json:"totalSeatCount"`
	AssignedSeatCount   int            `json:"assignedSeatCount"`
	UnassignedSeatCount int            `json:"unassignedSeatCount"`
	UnassignedGuests    []domain.Guest `json:"unassignedGuests"`
}

// ComputeStats derives occupancy from the current plan and guest list.
// Nothing here is persisted. Guest ids with no directory record count as
// zero seats, and a guest referenced by more than one table (possible only
// through historical bad writes) is counted once toward the plan total.
func ComputeStats(plan *domain.SeatingPlan, guests []domain.Guest) PlanStats {
	partySizes := make(map[string]int, len(guests))
	for _, g := range guests {
		partySizes[g.ID] = g.PartySize
	}

	stats := PlanStats{
		Tables:           make([]TableStats, len(plan.Tables)),
		UnassignedGuests: []domain.Guest{},
	}

	assigned := make(map[string]struct{})
	for i, table := range plan.Tables {
		occupied := 0
		for _, id := range table.GuestIDs {
			occupied += partySizes[id]
			assigned[id] = struct{}{}
		}
		remaining := table.Capacity - occupied
		if remaining < 0 {
			remaining = 0
		}
		stats.Tables[i] = TableStats{
			TableID:        table.ID,
			Label:          table.Label,
			Capacity:       table.Capacity,
			OccupiedSeats:  occupied,
			RemainingSeats: remaining,
			OverCapacity:   occupied > table.Capacity,
		}
	}

	for id := range assigned {
		stats.AssignedSeatCount += partySizes[id]
	}
	for _, g := range guests {
		stats.TotalSeatCount += g.PartySize
		if _, ok := assigned[g.ID]; !ok {
			stats.UnassignedGuests = append(stats.UnassignedGuests, g)
		}
	}
	stats.UnassignedSeatCount = stats.TotalSeatCount - stats.AssignedSeatCount
	if stats.UnassignedSeatCount < 0 {
		stats.UnassignedSeatCount = 0
	}

	return stats
}
