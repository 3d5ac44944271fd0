package http

import (
	"time"

	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/seating"
)

type guestResponse struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Phone            string     `json:"phone"`
	PartySize        int        `json:"partySize"`
	Attending        *bool      `json:"attending"`
	Language         string     `json:"language"`
	LastInviteSentAt *time.Time `json:"lastInviteSentAt"`
	Invited          bool       `json:"invited"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func toGuestResponse(g domain.Guest) guestResponse {
	return guestResponse{
		ID:               g.ID,
		FirstName:        g.FirstName,
		LastName:         g.LastName,
		Phone:            g.Phone,
		PartySize:        g.PartySize,
		Attending:        g.Attending,
		Language:         string(g.Language),
		LastInviteSentAt: g.LastInviteSentAt,
		Invited:          g.Invited(),
		UpdatedAt:        g.UpdatedAt,
	}
}

type tableResponse struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation float64  `json:"rotation"`
	Capacity int      `json:"capacity"`
	GuestIDs []string `json:"guestIds"`
}

type planResponse struct {
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Tables    []tableResponse `json:"tables"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toPlanResponse(p *domain.SeatingPlan) planResponse {
	tables := make([]tableResponse, len(p.Tables))
	for i, t := range p.Tables {
		tables[i] = tableResponse{
			ID:       t.ID,
			Label:    t.Label,
			Type:     string(t.Type),
			X:        t.X,
			Y:        t.Y,
			Rotation: t.Rotation,
			Capacity: t.Capacity,
			GuestIDs: t.GuestIDs,
		}
	}
	return planResponse{
		Slug:      p.Slug,
		Name:      p.Name,
		Width:     p.Width,
		Height:    p.Height,
		Tables:    tables,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type planStatsResponse struct {
	Tables              []seating.TableStats `json:"tables"`
	TotalSeatCount      int                  `json:"totalSeatCount"`
	AssignedSeatCount   int                  `json:"assignedSeatCount"`
	UnassignedSeatCount int                  `json:"unassignedSeatCount"`
	UnassignedGuests    []guestResponse      `json:"unassignedGuests"`
}

func toStatsResponse(s seating.PlanStats) planStatsResponse {
	unassigned := make([]guestResponse, len(s.UnassignedGuests))
	for i, g := range s.UnassignedGuests {
		unassigned[i] = toGuestResponse(g)
	}
	return planStatsResponse{
		Tables:              s.Tables,
		TotalSeatCount:      s.TotalSeatCount,
		AssignedSeatCount:   s.AssignedSeatCount,
		UnassignedSeatCount: s.UnassignedSeatCount,
		UnassignedGuests:    unassigned,
	}
}

type seatingResponse struct {
	Plan  planResponse      `json:"plan"`
	Stats planStatsResponse `json:"stats"`
}

type guestListStats struct {
	Total              int `json:"total"`
	Invited            int `json:"invited"`
	NotInvited         int `json:"notInvited"`
	Attending          int `json:"attending"`
	Declined           int `json:"declined"`
	Pending            int `json:"pending"`
	AttendingHeadcount int `json:"attendingHeadcount"`
}

type guestListResponse struct {
	Guests []guestResponse `json:"guests"`
	Stats  guestListStats  `json:"stats"`
}
