package models

import "time"

type ParticipantStatus string

const (
	ParticipantStatusApplied   ParticipantStatus = "APPLIED"
	ParticipantStatusConfirmed ParticipantStatus = "CONFIRMED"
)

// Participant links a user to a tournament. Confirmed participants in
// registration order form the roster handed to bracket generation.
type Participant struct {
	ID           string            `json:"id" db:"id"`
	TournamentID string            `json:"tournament_id" db:"tournament_id"`
	UserID       string            `json:"user_id" db:"user_id"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
