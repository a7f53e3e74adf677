package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/matchpoint/tournament-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, playerIDs []string) *models.Bracket {
	t.Helper()
	g := NewSingleEliminationGenerator()
	bracket, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: "t-1",
		PlayerIDs:    playerIDs,
	})
	require.NoError(t, err)
	require.NotNil(t, bracket)
	return bracket
}

func players(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("player-%d", i+1)
	}
	return ids
}

func TestBracketSize(t *testing.T) {
	cases := map[int]int{2: 2, 3: 4, 4: 4, 5: 8, 7: 8, 8: 8, 9: 16, 16: 16, 17: 32}
	for n, want := range cases {
		assert.Equal(t, want, BracketSize(n), "n=%d", n)
	}
}

func TestGenerateBracketRejectsTooFewPlayers(t *testing.T) {
	g := NewSingleEliminationGenerator()
	for _, ids := range [][]string{nil, {}, {"only-one"}} {
		_, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
			TournamentID: "t-1",
			PlayerIDs:    ids,
		})
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	}
}

func TestGenerateBracketRejectsDuplicatePlayers(t *testing.T) {
	g := NewSingleEliminationGenerator()
	_, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: "t-1",
		PlayerIDs:    []string{"a", "b", "a"},
	})
	assert.ErrorIs(t, err, ErrDuplicatePlayer)
}

func TestGenerateBracketTwoPlayers(t *testing.T) {
	bracket := generate(t, []string{"a", "b"})

	require.Len(t, bracket.Matches, 1)
	assert.Equal(t, 1, bracket.NumRounds())

	final := bracket.Final()
	require.NotNil(t, final)
	assert.Equal(t, models.MatchStatusPending, final.Status)
	require.NotNil(t, final.Player1ID)
	require.NotNil(t, final.Player2ID)
	assert.Equal(t, "a", *final.Player1ID)
	assert.Equal(t, "b", *final.Player2ID)
	assert.Nil(t, final.NextMatchID)
	assert.Nil(t, final.WinnerSlot)
	assert.True(t, final.Playable())
}

func TestGenerateBracketFourPlayers(t *testing.T) {
	bracket := generate(t, players(4))

	require.Len(t, bracket.Matches, 3)
	assert.Equal(t, 2, bracket.NumRounds())
	require.Len(t, bracket.Rounds[1], 2)
	require.Len(t, bracket.Rounds[2], 1)

	final := bracket.Final()
	require.NotNil(t, final)
	assert.Equal(t, 2, final.RoundNumber)
	assert.Nil(t, final.Player1ID)
	assert.Nil(t, final.Player2ID)

	// Both semifinals feed the final, one per slot.
	semi1 := bracket.Matches[bracket.Rounds[1][0]]
	semi2 := bracket.Matches[bracket.Rounds[1][1]]
	for _, semi := range []*models.Match{semi1, semi2} {
		assert.Equal(t, models.MatchStatusPending, semi.Status)
		assert.True(t, semi.Playable())
		require.NotNil(t, semi.NextMatchID)
		assert.Equal(t, final.ID, *semi.NextMatchID)
		require.NotNil(t, semi.WinnerSlot)
	}
	assert.Equal(t, 1, *semi1.WinnerSlot)
	assert.Equal(t, 2, *semi2.WinnerSlot)

	assert.Equal(t, "player-1", *semi1.Player1ID)
	assert.Equal(t, "player-2", *semi1.Player2ID)
	assert.Equal(t, "player-3", *semi2.Player1ID)
	assert.Equal(t, "player-4", *semi2.Player2ID)
}

func TestGenerateBracketFivePlayersWithByes(t *testing.T) {
	bracket := generate(t, players(5))

	// Bracket size 8: 3 byes, 7 matches, 3 rounds.
	require.Len(t, bracket.Matches, 7)
	assert.Equal(t, 3, bracket.NumRounds())
	require.Len(t, bracket.Rounds[1], 4)
	require.Len(t, bracket.Rounds[2], 2)
	require.Len(t, bracket.Rounds[3], 1)

	byes := 0
	for _, id := range bracket.Rounds[1] {
		m := bracket.Matches[id]
		if m.Status == models.MatchStatusBye {
			byes++
			require.NotNil(t, m.Player1ID)
			require.NotNil(t, m.WinnerID)
			assert.Equal(t, *m.Player1ID, *m.WinnerID)
			assert.Nil(t, m.Player2ID)
			assert.True(t, m.Decided())
		}
	}
	assert.Equal(t, 3, byes)

	// The first three players get byes; the last two meet in round 1.
	played := bracket.Matches[bracket.Rounds[1][3]]
	assert.Equal(t, models.MatchStatusPending, played.Status)
	assert.Equal(t, "player-4", *played.Player1ID)
	assert.Equal(t, "player-5", *played.Player2ID)

	// Bye winners propagate as players: the first semifinal is immediately
	// playable, the second waits on the round-1 match.
	semi1 := bracket.Matches[bracket.Rounds[2][0]]
	require.NotNil(t, semi1.Player1ID)
	require.NotNil(t, semi1.Player2ID)
	assert.Equal(t, "player-1", *semi1.Player1ID)
	assert.Equal(t, "player-2", *semi1.Player2ID)
	assert.True(t, semi1.Playable())

	semi2 := bracket.Matches[bracket.Rounds[2][1]]
	require.NotNil(t, semi2.Player1ID)
	assert.Equal(t, "player-3", *semi2.Player1ID)
	assert.Nil(t, semi2.Player2ID)
	assert.False(t, semi2.Playable())
	require.NotNil(t, played.NextMatchID)
	assert.Equal(t, semi2.ID, *played.NextMatchID)
	assert.Equal(t, 2, *played.WinnerSlot)
}

func TestGenerateBracketStructuralInvariants(t *testing.T) {
	for n := 2; n <= 33; n++ {
		t.Run(fmt.Sprintf("players=%d", n), func(t *testing.T) {
			bracket := generate(t, players(n))
			size := BracketSize(n)

			// One match per elimination.
			assert.Len(t, bracket.Matches, size-1)

			byes := 0
			finals := 0
			for _, m := range bracket.Matches {
				assert.Equal(t, "t-1", m.TournamentID)
				if m.Status == models.MatchStatusBye {
					byes++
				}
				if m.IsFinal() {
					finals++
					assert.Nil(t, m.WinnerSlot)
				} else {
					require.NotNil(t, m.NextMatchID)
					next, ok := bracket.Match(*m.NextMatchID)
					require.True(t, ok, "forward link must resolve")
					assert.Equal(t, m.RoundNumber+1, next.RoundNumber)
					require.NotNil(t, m.WinnerSlot)
					assert.Contains(t, []int{1, 2}, *m.WinnerSlot)
				}
			}
			assert.Equal(t, size-n, byes)
			assert.Equal(t, 1, finals)

			// Every slot of every later-round match has exactly one feed: a
			// bye winner already placed, or one link from an undecided match
			// whose winner will land there.
			type slotKey struct {
				matchID string
				slot    int
			}
			feeds := make(map[slotKey]int)
			for _, m := range bracket.Matches {
				if m.RoundNumber > 1 {
					if m.Player1ID != nil {
						feeds[slotKey{m.ID, 1}]++
					}
					if m.Player2ID != nil {
						feeds[slotKey{m.ID, 2}]++
					}
				}
				if m.NextMatchID != nil && !m.Decided() {
					feeds[slotKey{*m.NextMatchID, *m.WinnerSlot}]++
				}
			}
			for _, m := range bracket.Matches {
				if m.RoundNumber == 1 {
					continue
				}
				assert.Equal(t, 1, feeds[slotKey{m.ID, 1}], "match %s slot 1", m.ID)
				assert.Equal(t, 1, feeds[slotKey{m.ID, 2}], "match %s slot 2", m.ID)
			}

			// Every player appears in round 1 exactly once.
			seen := make(map[string]int)
			for _, id := range bracket.Rounds[1] {
				m := bracket.Matches[id]
				if m.Player1ID != nil {
					seen[*m.Player1ID]++
				}
				if m.Player2ID != nil {
					seen[*m.Player2ID]++
				}
			}
			require.Len(t, seen, n)
			for _, count := range seen {
				assert.Equal(t, 1, count)
			}
		})
	}
}

func TestGenerateBracketIsDeterministicForSameOrder(t *testing.T) {
	a := generate(t, players(6))
	b := generate(t, players(6))

	pairings := func(bracket *models.Bracket) [][2]string {
		var out [][2]string
		for _, id := range bracket.Rounds[1] {
			m := bracket.Matches[id]
			pair := [2]string{}
			if m.Player1ID != nil {
				pair[0] = *m.Player1ID
			}
			if m.Player2ID != nil {
				pair[1] = *m.Player2ID
			}
			out = append(out, pair)
		}
		return out
	}
	assert.Equal(t, pairings(a), pairings(b))
}
