package brackets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/matchpoint/tournament-api/models"
)

var (
	ErrNotEnoughPlayers = errors.New("single elimination bracket requires at least 2 players")
	ErrDuplicatePlayer  = errors.New("player list contains duplicate ids")
)

// advancer is one feed into a next-round slot: the source match, plus the
// winner's id when it is already known (a bye decided at creation). A known
// winner fills the target slot immediately; an undecided source only gets
// its forward link set.
type advancer struct {
	playerID string
	matchID  string
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Format() models.BracketFormat {
	return models.FormatSingleElimination
}

// BracketSize returns the smallest power of two >= n. It determines the
// number of byes (BracketSize(n) - n) and rounds (log2).
func BracketSize(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// GenerateBracket builds the full single-elimination tree for the given
// ordered players. The first bracketSize-n players receive round-1 BYE
// matches, decided at creation with the player as winner; the rest pair off
// sequentially into PENDING matches. Later rounds are built by pairing
// advancers two at a time until one remains, whose match is the final.
func (g *SingleEliminationGenerator) GenerateBracket(_ context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	playerIDs := params.PlayerIDs
	n := len(playerIDs)
	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}
	seen := make(map[string]struct{}, n)
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicatePlayer
		}
		seen[id] = struct{}{}
	}

	size := BracketSize(n)
	numByes := size - n
	now := time.Now().UTC()

	bracket := &models.Bracket{
		ID:           uuid.NewString(),
		TournamentID: params.TournamentID,
		Format:       models.FormatSingleElimination,
		Matches:      make(map[string]*models.Match, size-1),
		Rounds:       make(map[int][]string),
		CreatedAt:    now,
	}

	addMatch := func(m *models.Match) {
		bracket.Matches[m.ID] = m
		bracket.Rounds[m.RoundNumber] = append(bracket.Rounds[m.RoundNumber], m.ID)
	}

	round := 1
	position := 1
	advancers := make([]advancer, 0, size/2)

	for i := 0; i < numByes; i++ {
		playerID := playerIDs[i]
		m := &models.Match{
			ID:              uuid.NewString(),
			TournamentID:    params.TournamentID,
			RoundNumber:     round,
			PositionInRound: position,
			Player1ID:       &playerID,
			WinnerID:        &playerID,
			Status:          models.MatchStatusBye,
			CreatedAt:       now,
		}
		addMatch(m)
		// The winner is already known, so the next-round slot can be
		// filled immediately; the match still carries its forward link.
		advancers = append(advancers, advancer{playerID: playerID, matchID: m.ID})
		position++
	}

	// The remaining count is even by construction of the bracket size.
	for i := numByes; i < n; i += 2 {
		p1 := playerIDs[i]
		p2 := playerIDs[i+1]
		m := &models.Match{
			ID:              uuid.NewString(),
			TournamentID:    params.TournamentID,
			RoundNumber:     round,
			PositionInRound: position,
			Player1ID:       &p1,
			Player2ID:       &p2,
			Status:          models.MatchStatusPending,
			CreatedAt:       now,
		}
		addMatch(m)
		advancers = append(advancers, advancer{matchID: m.ID})
		position++
	}

	for len(advancers) > 1 {
		round++
		position = 1
		next := make([]advancer, 0, len(advancers)/2)
		for i := 0; i < len(advancers); i += 2 {
			m := &models.Match{
				ID:              uuid.NewString(),
				TournamentID:    params.TournamentID,
				RoundNumber:     round,
				PositionInRound: position,
				Status:          models.MatchStatusPending,
				CreatedAt:       now,
			}
			addMatch(m)
			linkAdvancer(bracket, advancers[i], m, 1)
			linkAdvancer(bracket, advancers[i+1], m, 2)
			next = append(next, advancer{matchID: m.ID})
			position++
		}
		advancers = next
	}

	return bracket, nil
}

// linkAdvancer wires one feed into the given slot of target. The source
// match gets its forward link set; when the winner is already known it is
// also assigned to the slot right away.
func linkAdvancer(b *models.Bracket, a advancer, target *models.Match, slot int) {
	source := b.Matches[a.matchID]
	source.NextMatchID = &target.ID
	winnerSlot := slot
	source.WinnerSlot = &winnerSlot

	if a.playerID != "" {
		playerID := a.playerID
		if slot == 1 {
			target.Player1ID = &playerID
		} else {
			target.Player2ID = &playerID
		}
	}
}
