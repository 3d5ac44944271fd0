package domain

import "time"

type Language string

const (
	LanguageRU Language = "ru"
	LanguageHE Language = "he"
)

func (l Language) Valid() bool {
	return l == LanguageRU || l == LanguageHE
}

// Guest is one invitee record; a single record may represent a whole
// family, with PartySize seats.
type Guest struct {
	ID               string
	FirstName        string
	LastName         string
	Phone            string
	PartySize        int
	Attending        *bool
	Language         Language
	LastInviteSentAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (g Guest) Invited() bool {
	return g.LastInviteSentAt != nil
}

type GuestInput struct {
	FirstName string
	LastName  string
	Phone     string
	PartySize int
	Attending *bool
	Language  Language
}

// GuestUpdate is a partial update; nil pointer fields are left untouched.
// Attending and LastInviteSentAt are nullable, so clearing them needs the
// matching Set flag rather than a nil pointer.
type GuestUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	PartySize *int
	Language  *Language

	Attending    *bool
	SetAttending bool

	LastInviteSentAt    *time.Time
	SetLastInviteSentAt bool
}
