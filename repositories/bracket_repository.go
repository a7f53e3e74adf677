package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matchpoint/tournament-api/models"
)

var ErrBracketNotFound = errors.New("bracket not found")

// BracketRepository persists brackets at whole-bracket granularity: Save
// replaces the tournament's bracket and all of its matches in a single
// transaction, and GetByTournamentID reconstructs the match arena and
// rounds index.
type BracketRepository interface {
	Save(ctx context.Context, bracket *models.Bracket) error
	GetByTournamentID(ctx context.Context, tournamentID string) (*models.Bracket, error)
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Save(ctx context.Context, bracket *models.Bracket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete-then-insert keeps the replace semantics simple: a save is the
	// whole bracket or nothing.
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, bracket.TournamentID); err != nil {
		return fmt.Errorf("failed to clear matches for tournament %s: %w", bracket.TournamentID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM brackets WHERE tournament_id = $1`, bracket.TournamentID); err != nil {
		return fmt.Errorf("failed to clear bracket for tournament %s: %w", bracket.TournamentID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO brackets (id, tournament_id, format, created_at)
		VALUES ($1, $2, $3, $4)`,
		bracket.ID, bracket.TournamentID, bracket.Format, bracket.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert bracket: %w", err)
	}

	insertMatch := `
		INSERT INTO matches
			(id, bracket_id, tournament_id, round_number, position_in_round,
			 player1_id, player2_id, score1, score2, winner_id, status,
			 next_match_id, winner_slot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	// Later rounds first: next_match_id references next-round rows, so the
	// targets must exist before the rows that point at them.
	for round := bracket.NumRounds(); round >= 1; round-- {
		for _, matchID := range bracket.Rounds[round] {
			m := bracket.Matches[matchID]
			if _, err := tx.ExecContext(ctx, insertMatch,
				m.ID, bracket.ID, m.TournamentID, m.RoundNumber, m.PositionInRound,
				m.Player1ID, m.Player2ID, m.Score1, m.Score2, m.WinnerID, m.Status,
				m.NextMatchID, m.WinnerSlot, m.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bracket save: %w", err)
	}
	return nil
}

func (r *postgresBracketRepository) GetByTournamentID(ctx context.Context, tournamentID string) (*models.Bracket, error) {
	bracket := &models.Bracket{
		Matches: make(map[string]*models.Match),
		Rounds:  make(map[int][]string),
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, tournament_id, format, created_at
		FROM brackets
		WHERE tournament_id = $1`, tournamentID,
	).Scan(&bracket.ID, &bracket.TournamentID, &bracket.Format, &bracket.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket for tournament %s: %w", tournamentID, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tournament_id, round_number, position_in_round,
		       player1_id, player2_id, score1, score2, winner_id, status,
		       next_match_id, winner_slot, created_at
		FROM matches
		WHERE bracket_id = $1
		ORDER BY round_number ASC, position_in_round ASC`, bracket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for bracket %s: %w", bracket.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		m := &models.Match{}
		if err := rows.Scan(
			&m.ID, &m.TournamentID, &m.RoundNumber, &m.PositionInRound,
			&m.Player1ID, &m.Player2ID, &m.Score1, &m.Score2, &m.WinnerID, &m.Status,
			&m.NextMatchID, &m.WinnerSlot, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		bracket.Matches[m.ID] = m
		bracket.Rounds[m.RoundNumber] = append(bracket.Rounds[m.RoundNumber], m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return bracket, nil
}
