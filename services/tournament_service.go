package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matchpoint/tournament-api/models"
	"github.com/matchpoint/tournament-api/repositories"
	"github.com/matchpoint/tournament-api/storage"
	"golang.org/x/sync/errgroup"
)

const inviteTokenLength = 24

// Authorizer decides whether a user may manage a tournament (open or close
// registration, generate the bracket, record results). The default
// implementation checks the designated organizer.
type Authorizer interface {
	CanManage(tournament *models.Tournament, userID string) bool
}

type OrganizerAuthorizer struct{}

func (OrganizerAuthorizer) CanManage(t *models.Tournament, userID string) bool {
	return t != nil && userID != "" && t.OrganizerID == userID
}

type TournamentService interface {
	Create(ctx context.Context, organizerID string, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	OpenRegistration(ctx context.Context, id, requesterID string) (*models.Tournament, error)
	Cancel(ctx context.Context, id, requesterID string) (*models.Tournament, error)
	SetStatus(ctx context.Context, tournamentID string, status models.TournamentStatus) error
	UploadLogo(ctx context.Context, id, requesterID, contentType string, file io.Reader) (*models.Tournament, error)
}

type CreateTournamentInput struct {
	Name            string               `json:"name"`
	Description     *string              `json:"description"`
	Format          models.BracketFormat `json:"format"`
	MaxParticipants int                  `json:"max_participants"`
	StartDate       *time.Time           `json:"start_date"`
	EndDate         *time.Time           `json:"end_date"`
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	uploader        storage.FileUploader
	emails          *EmailService
	authorizer      Authorizer
	logger          *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	emails *EmailService,
	authorizer Authorizer,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		uploader:        uploader,
		emails:          emails,
		authorizer:      authorizer,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID string, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 3 || len(name) > 100 {
		return nil, ErrTournamentNameInvalid
	}
	format := input.Format
	if format == "" {
		format = models.FormatSingleElimination
	}
	if format != models.FormatSingleElimination && format != models.FormatRoundRobin {
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, input.Format)
	}
	if input.MaxParticipants < 0 {
		return nil, fmt.Errorf("%w: max participants must not be negative", ErrValidationFailed)
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrTournamentInvalidDates
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     input.Description,
		Format:          format,
		OrganizerID:     organizerID,
		InviteToken:     generateRandomToken(inviteTokenLength),
		Status:          models.StatusPending,
		MaxParticipants: input.MaxParticipants,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		organizer, err := s.userRepo.GetByID(gCtx, tournament.OrganizerID)
		if err != nil {
			return fmt.Errorf("failed to load organizer %s: %w", tournament.OrganizerID, err)
		}
		organizer.PasswordHash = ""
		tournament.Organizer = organizer
		return nil
	})
	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, id, nil, true)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		tournament.Participants = make([]models.Participant, 0, len(participants))
		for _, p := range participants {
			tournament.Participants = append(tournament.Participants, *p)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.applyLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, t := range tournaments {
		s.applyLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) OpenRegistration(ctx context.Context, id, requesterID string) (*models.Tournament, error) {
	return s.transition(ctx, id, requesterID, models.StatusRegistration)
}

func (s *tournamentService) Cancel(ctx context.Context, id, requesterID string) (*models.Tournament, error) {
	return s.transition(ctx, id, requesterID, models.StatusCanceled)
}

func (s *tournamentService) transition(ctx context.Context, id, requesterID string, next models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.CanManage(tournament, requesterID) {
		return nil, ErrForbiddenOperation
	}
	if err := s.SetStatus(ctx, id, next); err != nil {
		return nil, err
	}
	tournament.Status = next
	return tournament, nil
}

// SetStatus is the tournament status sink consumed by the bracket engine.
// On completion it notifies participants best-effort: a mail failure is
// logged, never surfaced, so it cannot mask the status change itself.
func (s *tournamentService) SetStatus(ctx context.Context, tournamentID string, status models.TournamentStatus) error {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if !tournament.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidTransition, tournament.Status, status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, tournamentID, status); err != nil {
		return fmt.Errorf("failed to update tournament %s status: %w", tournamentID, err)
	}

	if status == models.StatusCompleted {
		s.notifyCompletion(ctx, tournament)
	}
	return nil
}

func (s *tournamentService) notifyCompletion(ctx context.Context, tournament *models.Tournament) {
	if s.emails == nil {
		return
	}
	confirmed := models.ParticipantStatusConfirmed
	participants, err := s.participantRepo.ListByTournament(ctx, tournament.ID, &confirmed, true)
	if err != nil {
		s.logger.Error("failed to load participants for completion mail",
			slog.String("tournament_id", tournament.ID), slog.Any("error", err))
		return
	}
	for _, p := range participants {
		if p.User == nil {
			continue
		}
		if err := s.emails.SendTournamentCompletedEmail(p.User.Email, tournament.Name); err != nil {
			s.logger.Error("failed to send completion mail",
				slog.String("tournament_id", tournament.ID),
				slog.String("email", p.User.Email),
				slog.Any("error", err))
		}
	}
}

func (s *tournamentService) UploadLogo(ctx context.Context, id, requesterID, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.CanManage(tournament, requesterID) {
		return nil, ErrForbiddenOperation
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: logo storage is not configured", ErrValidationFailed)
	}

	key := fmt.Sprintf("tournaments/%s/logo", tournament.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournament.ID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to persist logo key: %w", err)
	}
	tournament.LogoKey = &result.Key
	s.applyLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) applyLogoURL(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	if url != "" {
		t.LogoURL = &url
	}
}

func (s *tournamentService) getTournament(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return tournament, nil
}
