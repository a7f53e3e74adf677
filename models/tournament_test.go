package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTournamentStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to TournamentStatus
		want     bool
	}{
		{StatusPending, StatusRegistration, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusActive, false},
		{StatusRegistration, StatusActive, true},
		{StatusRegistration, StatusCanceled, true},
		{StatusRegistration, StatusCompleted, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCanceled, true},
		{StatusActive, StatusRegistration, false},
		{StatusCompleted, StatusCanceled, false},
		{StatusCompleted, StatusActive, false},
		{StatusCanceled, StatusRegistration, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTournamentStatusValid(t *testing.T) {
	for _, s := range []TournamentStatus{StatusPending, StatusRegistration, StatusActive, StatusCompleted, StatusCanceled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, TournamentStatus("ARCHIVED").Valid())
	assert.False(t, TournamentStatus("").Valid())
}

func TestMatchStateHelpers(t *testing.T) {
	p1 := "a"
	p2 := "b"

	pending := &Match{Status: MatchStatusPending}
	assert.False(t, pending.Decided())
	assert.False(t, pending.Playable())
	assert.True(t, pending.IsFinal())

	pending.Player1ID = &p1
	assert.False(t, pending.Playable())
	pending.Player2ID = &p2
	assert.True(t, pending.Playable())

	bye := &Match{Status: MatchStatusBye, Player1ID: &p1, WinnerID: &p1}
	assert.True(t, bye.Decided())
	assert.False(t, bye.Playable())

	decided := &Match{Status: MatchStatusPlayer2Won, Player1ID: &p1, Player2ID: &p2, WinnerID: &p2}
	assert.True(t, decided.Decided())
	assert.False(t, decided.Playable())
}
