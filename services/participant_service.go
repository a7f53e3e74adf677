package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/matchpoint/tournament-api/models"
	"github.com/matchpoint/tournament-api/repositories"
)

// ParticipantService is the roster provider: it owns registrations and
// hands the ordered list of confirmed players to bracket generation.
type ParticipantService interface {
	JoinByInviteToken(ctx context.Context, token, userID string) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Participant, error)
	ConfirmedPlayerIDs(ctx context.Context, tournamentID string) ([]string, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	userRepo        repositories.UserRepository
	emails          *EmailService
	logger          *slog.Logger
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	emails *EmailService,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		userRepo:        userRepo,
		emails:          emails,
		logger:          logger,
	}
}

func (s *participantService) JoinByInviteToken(ctx context.Context, token, userID string) (*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to resolve invite token: %w", err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}
	if tournament.MaxParticipants > 0 {
		count, err := s.participantRepo.CountByTournament(ctx, tournament.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= tournament.MaxParticipants {
			return nil, ErrTournamentFull
		}
	}

	participant := &models.Participant{
		ID:           uuid.NewString(),
		TournamentID: tournament.ID,
		UserID:       userID,
		// Joining through the invite link implies confirmation.
		Status: models.ParticipantStatusConfirmed,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	s.sendJoinedMail(ctx, tournament, userID)
	return participant, nil
}

func (s *participantService) sendJoinedMail(ctx context.Context, tournament *models.Tournament, userID string) {
	if s.emails == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user for registration mail",
			slog.String("user_id", userID), slog.Any("error", err))
		return
	}
	if err := s.emails.SendRegistrationEmail(user.Email, tournament.Name); err != nil {
		s.logger.Error("failed to send registration mail",
			slog.String("email", user.Email), slog.Any("error", err))
	}
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Participant, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %s: %w", tournamentID, err)
	}
	return participants, nil
}

// ConfirmedPlayerIDs returns confirmed user ids in registration order.
func (s *participantService) ConfirmedPlayerIDs(ctx context.Context, tournamentID string) ([]string, error) {
	confirmed := models.ParticipantStatusConfirmed
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, &confirmed, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed participants for tournament %s: %w", tournamentID, err)
	}
	playerIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		playerIDs = append(playerIDs, p.UserID)
	}
	return playerIDs, nil
}
