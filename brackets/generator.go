package brackets

import (
	"context"

	"github.com/matchpoint/tournament-api/models"
)

// GenerateBracketParams carries the inputs for bracket construction. The
// player order is treated as already seeded; generators must not reshuffle,
// which keeps output deterministic for a fixed input order.
type GenerateBracketParams struct {
	TournamentID string
	PlayerIDs    []string
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error)

	Format() models.BracketFormat
}
