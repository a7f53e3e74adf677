package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/matchpoint/tournament-api/brackets"
	"github.com/matchpoint/tournament-api/models"
	"github.com/matchpoint/tournament-api/repositories"
	"golang.org/x/sync/errgroup"
)

// TournamentStatusSink receives the lifecycle transitions driven by the
// engine: ACTIVE after generation, COMPLETED after the final match.
type TournamentStatusSink interface {
	SetStatus(ctx context.Context, tournamentID string, status models.TournamentStatus) error
}

// BracketBroadcaster pushes live updates to subscribed clients. Satisfied
// by *brackets.Hub.
type BracketBroadcaster interface {
	BroadcastToRoom(roomID string, event brackets.Event)
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID, requesterID string) (*models.Bracket, error)
	GetBracket(ctx context.Context, tournamentID string) (*models.Bracket, error)
	GetBracketView(ctx context.Context, tournamentID string) (*BracketView, error)
	RecordResult(ctx context.Context, input RecordResultInput) (*models.Match, error)
}

type RecordResultInput struct {
	TournamentID string
	MatchID      string
	Score1       int
	Score2       int
	RequesterID  string
}

// BracketView bundles everything a bracket page needs in one response.
type BracketView struct {
	Tournament   *models.Tournament    `json:"tournament"`
	Bracket      *models.Bracket       `json:"bracket"`
	Participants []*models.Participant `json:"participants"`
}

// keyedMutex serializes bracket mutation per tournament. Every
// read-modify-write (load bracket, validate, mutate, write the linked next
// match, persist) runs under the tournament's mutex: two results feeding
// the same next match must not race on its player slots, and the slot
// write touches a different match than the one being validated, so no
// finer-grained locking is safe.
type keyedMutex struct {
	mutexes sync.Map
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.mutexes.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type bracketService struct {
	tournamentRepo repositories.TournamentRepository
	bracketRepo    repositories.BracketRepository
	roster         ParticipantService
	statusSink     TournamentStatusSink
	authorizer     Authorizer
	broadcaster    BracketBroadcaster
	generators     map[models.BracketFormat]brackets.BracketGenerator
	logger         *slog.Logger
	locks          keyedMutex
}

func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	bracketRepo repositories.BracketRepository,
	roster ParticipantService,
	statusSink TournamentStatusSink,
	authorizer Authorizer,
	broadcaster BracketBroadcaster,
	logger *slog.Logger,
) BracketService {
	generators := make(map[models.BracketFormat]brackets.BracketGenerator)
	for _, g := range []brackets.BracketGenerator{
		brackets.NewSingleEliminationGenerator(),
	} {
		generators[g.Format()] = g
	}
	return &bracketService{
		tournamentRepo: tournamentRepo,
		bracketRepo:    bracketRepo,
		roster:         roster,
		statusSink:     statusSink,
		authorizer:     authorizer,
		broadcaster:    broadcaster,
		generators:     generators,
		logger:         logger,
	}
}

// GenerateBracket builds and persists the tournament's match tree, then
// marks the tournament ACTIVE. Idempotent: once the tournament is active
// or completed the stored bracket is returned as-is instead of being
// rebuilt. Before activation, calling it again regenerates from the
// current roster.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID, requesterID string) (*models.Bracket, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.CanManage(tournament, requesterID) {
		return nil, ErrForbiddenOperation
	}

	if tournament.Status == models.StatusActive || tournament.Status == models.StatusCompleted {
		existing, err := s.bracketRepo.GetByTournamentID(ctx, tournamentID)
		if err == nil {
			return existing, nil
		}
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, fmt.Errorf("%w: tournament %s is %s but has no bracket",
				ErrBracketConsistency, tournamentID, tournament.Status)
		}
		return nil, fmt.Errorf("failed to load existing bracket: %w", err)
	}

	generator, ok := s.generators[tournament.Format]
	if !ok {
		return nil, ErrBracketFormatUnsupported
	}

	playerIDs, err := s.roster.ConfirmedPlayerIDs(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %s: %w", tournamentID, err)
	}
	if len(playerIDs) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	// Seeding happens here, once: the generator treats the order it is
	// given as final.
	rand.Shuffle(len(playerIDs), func(i, j int) {
		playerIDs[i], playerIDs[j] = playerIDs[j], playerIDs[i]
	})

	bracket, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		PlayerIDs:    playerIDs,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughPlayers) {
			return nil, ErrNotEnoughPlayers
		}
		return nil, fmt.Errorf("failed to generate bracket for tournament %s: %w", tournamentID, err)
	}

	if err := s.bracketRepo.Save(ctx, bracket); err != nil {
		return nil, fmt.Errorf("failed to save bracket for tournament %s: %w", tournamentID, err)
	}
	if err := s.statusSink.SetStatus(ctx, tournamentID, models.StatusActive); err != nil {
		return nil, fmt.Errorf("bracket saved but failed to activate tournament %s: %w", tournamentID, err)
	}

	s.logger.Info("bracket generated",
		slog.String("tournament_id", tournamentID),
		slog.Int("players", len(playerIDs)),
		slog.Int("matches", len(bracket.Matches)),
		slog.Int("rounds", bracket.NumRounds()))
	s.broadcast(tournamentID, brackets.EventBracketGenerated, bracket)

	return bracket, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID string) (*models.Bracket, error) {
	bracket, err := s.bracketRepo.GetByTournamentID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to load bracket for tournament %s: %w", tournamentID, err)
	}
	return bracket, nil
}

func (s *bracketService) GetBracketView(ctx context.Context, tournamentID string) (*BracketView, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	view := &BracketView{Tournament: tournament}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bracket, err := s.GetBracket(gCtx, tournamentID)
		if err != nil {
			return err
		}
		view.Bracket = bracket
		return nil
	})
	g.Go(func() error {
		participants, err := s.roster.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		view.Participants = participants
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// RecordResult applies a scored result to a pending match, decides the
// winner from the strictly greater score, and advances the winner into the
// linked next-round slot. When the decided match is the final, the
// tournament is signalled COMPLETED; that signal is best-effort and never
// rolls the already-persisted decision back.
func (s *bracketService) RecordResult(ctx context.Context, input RecordResultInput) (*models.Match, error) {
	unlock := s.locks.lock(input.TournamentID)
	defer unlock()

	tournament, err := s.getTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.CanManage(tournament, input.RequesterID) {
		return nil, ErrForbiddenOperation
	}

	bracket, err := s.bracketRepo.GetByTournamentID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to load bracket for tournament %s: %w", input.TournamentID, err)
	}

	match, ok := bracket.Match(input.MatchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if match.Status != models.MatchStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrMatchAlreadyDecided, match.Status)
	}
	if match.Player1ID == nil || match.Player2ID == nil {
		return nil, ErrMatchMissingPlayers
	}
	if input.Score1 < 0 || input.Score2 < 0 {
		return nil, ErrScoreNegative
	}
	if input.Score1 == input.Score2 {
		return nil, ErrScoresEqual
	}

	score1, score2 := input.Score1, input.Score2
	match.Score1 = &score1
	match.Score2 = &score2
	if score1 > score2 {
		match.Status = models.MatchStatusPlayer1Won
		match.WinnerID = match.Player1ID
	} else {
		match.Status = models.MatchStatusPlayer2Won
		match.WinnerID = match.Player2ID
	}

	// Advance before persisting so the decision and the downstream slot
	// write land in the same atomic save.
	final := match.NextMatchID == nil
	if !final {
		if err := s.advanceWinner(bracket, match); err != nil {
			return nil, err
		}
	}

	if err := s.bracketRepo.Save(ctx, bracket); err != nil {
		return nil, fmt.Errorf("failed to save bracket for tournament %s: %w", input.TournamentID, err)
	}
	s.broadcast(tournament.ID, brackets.EventMatchUpdated, match)

	if final {
		if err := s.statusSink.SetStatus(ctx, tournament.ID, models.StatusCompleted); err != nil {
			s.logger.Error("tournament completion signal failed",
				slog.String("tournament_id", tournament.ID), slog.Any("error", err))
			return match, fmt.Errorf("%w: %v", ErrCompletionSignalFailed, err)
		}
		s.broadcast(tournament.ID, brackets.EventTournamentCompleted, match)
	}

	return match, nil
}

// advanceWinner writes the decided match's winner into the slot of its
// linked next match. Advancement never creates or removes matches; it only
// fills a previously reserved slot. A dangling link or invalid slot means
// the bracket is corrupted and processing must stop.
func (s *bracketService) advanceWinner(bracket *models.Bracket, decided *models.Match) error {
	next, ok := bracket.Match(*decided.NextMatchID)
	if !ok {
		return fmt.Errorf("%w: match %s links to missing next match %s",
			ErrBracketConsistency, decided.ID, *decided.NextMatchID)
	}
	if decided.WinnerSlot == nil {
		return fmt.Errorf("%w: match %s has a next match but no winner slot",
			ErrBracketConsistency, decided.ID)
	}
	switch *decided.WinnerSlot {
	case 1:
		next.Player1ID = decided.WinnerID
	case 2:
		next.Player2ID = decided.WinnerID
	default:
		return fmt.Errorf("%w: match %s has invalid winner slot %d",
			ErrBracketConsistency, decided.ID, *decided.WinnerSlot)
	}
	return nil
}

func (s *bracketService) broadcast(tournamentID, eventType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(tournamentID, brackets.Event{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
	})
}

func (s *bracketService) getTournament(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return tournament, nil
}
