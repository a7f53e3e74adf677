package models

import "time"

// TournamentStatus values correspond to the ENUM in the database.
type TournamentStatus string

const (
	StatusPending      TournamentStatus = "PENDING"
	StatusRegistration TournamentStatus = "REGISTRATION_OPEN"
	StatusActive       TournamentStatus = "ACTIVE"
	StatusCompleted    TournamentStatus = "COMPLETED"
	StatusCanceled     TournamentStatus = "CANCELLED"
)

// Tournament is the metadata record the bracket engine hangs off of. The
// organizer is the only user allowed to generate the bracket and record
// results.
type Tournament struct {
	ID              string           `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     *string          `json:"description,omitempty" db:"description"`
	Format          BracketFormat    `json:"format" db:"format"`
	OrganizerID     string           `json:"organizer_id" db:"organizer_id"`
	InviteToken     string           `json:"invite_token,omitempty" db:"invite_token"`
	Status          TournamentStatus `json:"status" db:"status"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	StartDate       *time.Time       `json:"start_date,omitempty" db:"start_date"`
	EndDate         *time.Time       `json:"end_date,omitempty" db:"end_date"`
	LogoKey         *string          `json:"-" db:"logo_key"`
	LogoURL         *string          `json:"logo_url,omitempty" db:"-"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	// Optional related entities, populated on demand.
	Organizer    *User         `json:"organizer,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}

// Valid reports whether the value is one of the known lifecycle statuses.
func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRegistration, StatusActive, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo validates the tournament lifecycle:
// PENDING -> REGISTRATION_OPEN -> ACTIVE -> COMPLETED, with cancellation
// possible from any non-terminal state.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRegistration || next == StatusCanceled
	case StatusRegistration:
		return next == StatusActive || next == StatusCanceled
	case StatusActive:
		return next == StatusCompleted || next == StatusCanceled
	}
	return false
}
