package services

import (
	"context"
	"testing"

	"github.com/matchpoint/tournament-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParticipantTestService(tournament *models.Tournament) (ParticipantService, *fakeParticipantRepo) {
	tournaments := &fakeTournamentRepo{tournaments: map[string]*models.Tournament{
		tournament.ID: tournament,
	}}
	users := &fakeUserRepo{users: map[string]*models.User{
		"u-1": {ID: "u-1", Email: "p1@example.com"},
		"u-2": {ID: "u-2", Email: "p2@example.com"},
	}}
	participants := &fakeParticipantRepo{users: users}
	svc := NewParticipantService(participants, tournaments, users, nil, discardLogger())
	return svc, participants
}

func TestJoinByInviteToken(t *testing.T) {
	svc, _ := newParticipantTestService(&models.Tournament{
		ID:          "t-1",
		Name:        "Spring Open",
		InviteToken: "tok-1",
		Status:      models.StatusRegistration,
	})

	participant, err := svc.JoinByInviteToken(context.Background(), "tok-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", participant.TournamentID)
	assert.Equal(t, "u-1", participant.UserID)
	assert.Equal(t, models.ParticipantStatusConfirmed, participant.Status)
	assert.NotEmpty(t, participant.ID)

	// The same user cannot register twice.
	_, err = svc.JoinByInviteToken(context.Background(), "tok-1", "u-1")
	assert.ErrorIs(t, err, ErrRegistrationConflict)
}

func TestJoinByInviteTokenUnknownToken(t *testing.T) {
	svc, _ := newParticipantTestService(&models.Tournament{
		ID:          "t-1",
		InviteToken: "tok-1",
		Status:      models.StatusRegistration,
	})

	_, err := svc.JoinByInviteToken(context.Background(), "wrong-token", "u-1")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestJoinByInviteTokenRegistrationClosed(t *testing.T) {
	for _, status := range []models.TournamentStatus{
		models.StatusPending,
		models.StatusActive,
		models.StatusCompleted,
		models.StatusCanceled,
	} {
		svc, _ := newParticipantTestService(&models.Tournament{
			ID:          "t-1",
			InviteToken: "tok-1",
			Status:      status,
		})
		_, err := svc.JoinByInviteToken(context.Background(), "tok-1", "u-1")
		assert.ErrorIs(t, err, ErrRegistrationNotOpen, "status %s", status)
	}
}

func TestJoinByInviteTokenCapacity(t *testing.T) {
	svc, _ := newParticipantTestService(&models.Tournament{
		ID:              "t-1",
		InviteToken:     "tok-1",
		Status:          models.StatusRegistration,
		MaxParticipants: 1,
	})

	_, err := svc.JoinByInviteToken(context.Background(), "tok-1", "u-1")
	require.NoError(t, err)

	_, err = svc.JoinByInviteToken(context.Background(), "tok-1", "u-2")
	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestConfirmedPlayerIDsKeepsRegistrationOrder(t *testing.T) {
	svc, repo := newParticipantTestService(&models.Tournament{
		ID:          "t-1",
		InviteToken: "tok-1",
		Status:      models.StatusRegistration,
	})

	applied := models.ParticipantStatusApplied
	repo.participants = []*models.Participant{
		{ID: "p-1", TournamentID: "t-1", UserID: "u-1", Status: models.ParticipantStatusConfirmed},
		{ID: "p-2", TournamentID: "t-1", UserID: "u-3", Status: applied},
		{ID: "p-3", TournamentID: "t-1", UserID: "u-2", Status: models.ParticipantStatusConfirmed},
		{ID: "p-4", TournamentID: "other", UserID: "u-4", Status: models.ParticipantStatusConfirmed},
	}

	ids, err := svc.ConfirmedPlayerIDs(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u-1", "u-2"}, ids)
}
