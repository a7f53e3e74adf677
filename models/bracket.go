package models

import "time"

type BracketFormat string

const (
	FormatSingleElimination BracketFormat = "SINGLE_ELIMINATION"
	FormatRoundRobin        BracketFormat = "ROUND_ROBIN"
)

// Bracket holds the full match tree for one tournament. Matches are kept in
// an id-keyed arena; cross-match linkage goes through ids rather than
// nested pointers so the whole structure serializes cleanly.
type Bracket struct {
	ID           string            `json:"id" db:"id"`
	TournamentID string            `json:"tournament_id" db:"tournament_id"`
	Format       BracketFormat     `json:"format" db:"format"`
	Matches      map[string]*Match `json:"matches" db:"-"`
	Rounds       map[int][]string  `json:"rounds" db:"-"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// Match looks up a match by id.
func (b *Bracket) Match(id string) (*Match, bool) {
	m, ok := b.Matches[id]
	return m, ok
}

// NumRounds returns the highest round number present in the bracket.
func (b *Bracket) NumRounds() int {
	max := 0
	for round := range b.Rounds {
		if round > max {
			max = round
		}
	}
	return max
}

// Final returns the single match without a forward link, or nil if the
// bracket is malformed.
func (b *Bracket) Final() *Match {
	for _, m := range b.Matches {
		if m.IsFinal() {
			return m
		}
	}
	return nil
}
