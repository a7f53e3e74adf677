package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/matchpoint/tournament-api/models"
)

var (
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrParticipantConflict = errors.New("user is already registered for this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	ListByTournament(ctx context.Context, tournamentID string, status *models.ParticipantStatus, withUsers bool) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (id, tournament_id, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.TournamentID,
		p.UserID,
		p.Status,
	).Scan(&p.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrParticipantConflict
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// ListByTournament returns registrations in creation order, which is the
// roster order handed to bracket generation.
func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID string, status *models.ParticipantStatus, withUsers bool) ([]*models.Participant, error) {
	query := `
		SELECT p.id, p.tournament_id, p.user_id, p.status, p.created_at
		FROM participants p
		WHERE p.tournament_id = $1`
	if withUsers {
		query = `
		SELECT p.id, p.tournament_id, p.user_id, p.status, p.created_at,
		       u.id, u.email, u.full_name, u.created_at
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.tournament_id = $1`
	}

	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND p.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY p.created_at ASC, p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if withUsers {
			p.User = &models.User{}
			err = rows.Scan(&p.ID, &p.TournamentID, &p.UserID, &p.Status, &p.CreatedAt,
				&p.User.ID, &p.User.Email, &p.User.FullName, &p.User.CreatedAt)
		} else {
			err = rows.Scan(&p.ID, &p.TournamentID, &p.UserID, &p.Status, &p.CreatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM participants WHERE tournament_id = $1`
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %s: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
