package models

import "time"

// MatchStatus values mirror the match state machine: a match is created
// PENDING (or BYE, decided at creation) and transitions exactly once to one
// of the two win states when a result is recorded.
type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "PENDING"
	MatchStatusPlayer1Won MatchStatus = "PLAYER1_WON"
	MatchStatusPlayer2Won MatchStatus = "PLAYER2_WON"
	MatchStatusBye        MatchStatus = "BYE"
)

// Match is one node of an elimination bracket. Player slots stay nil until
// filled by round-1 seeding or by advancement from a feeding match.
// NextMatchID/WinnerSlot form the forward link: the winner of this match
// occupies the given slot of the referenced next-round match. The final
// match of the bracket is the only one with a nil NextMatchID.
type Match struct {
	ID              string      `json:"id" db:"id"`
	TournamentID    string      `json:"tournament_id" db:"tournament_id"`
	RoundNumber     int         `json:"round_number" db:"round_number"`
	PositionInRound int         `json:"position_in_round" db:"position_in_round"`
	Player1ID       *string     `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID       *string     `json:"player2_id,omitempty" db:"player2_id"`
	Score1          *int        `json:"score1,omitempty" db:"score1"`
	Score2          *int        `json:"score2,omitempty" db:"score2"`
	WinnerID        *string     `json:"winner_id,omitempty" db:"winner_id"`
	Status          MatchStatus `json:"status" db:"status"`
	NextMatchID     *string     `json:"next_match_id,omitempty" db:"next_match_id"`
	WinnerSlot      *int        `json:"winner_slot,omitempty" db:"winner_slot"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// Decided reports whether the match already has a winner (byes are decided
// at creation time).
func (m *Match) Decided() bool {
	switch m.Status {
	case MatchStatusPlayer1Won, MatchStatusPlayer2Won, MatchStatusBye:
		return true
	}
	return false
}

// Playable reports whether both slots are filled and no result has been
// recorded yet. Readiness is derived, not a distinct status.
func (m *Match) Playable() bool {
	return m.Status == MatchStatusPending && m.Player1ID != nil && m.Player2ID != nil
}

// IsFinal reports whether this match has no forward link.
func (m *Match) IsFinal() bool {
	return m.NextMatchID == nil
}
