package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

func TestRoundRobinEveryPairMeetsTwiceWithSwappedVenues(t *testing.T) {
	for _, n := range []int{2, 4, 5, 10} {
		rounds := RoundRobin(n)
		meetings := map[[2]int]int{}
		for _, round := range rounds {
			seen := map[int]bool{}
			for _, fx := range round {
				assert.False(t, seen[fx.Home], "n=%d team %d twice in a round", n, fx.Home)
				assert.False(t, seen[fx.Away], "n=%d team %d twice in a round", n, fx.Away)
				seen[fx.Home], seen[fx.Away] = true, true
				meetings[[2]int{fx.Home, fx.Away}]++
			}
		}
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a == b {
					continue
				}
				assert.Equal(t, 1, meetings[[2]int{a, b}], "n=%d %d hosts %d", n, a, b)
			}
		}
		even := n + n%2
		assert.Len(t, rounds, 2*(even-1))
	}
}

func TestDefaultLeagueBuildsCalendar(t *testing.T) {
	league, err := LoadLeague("")
	require.NoError(t, err)
	require.Len(t, league.Teams, 10)

	start := time.Date(2025, 8, 15, 18, 0, 0, 0, time.UTC)
	snap := league.Build(start, 10*time.Minute)

	assert.Len(t, snap.Matches, 90)
	assert.Len(t, snap.Players, 50)
	assert.Equal(t, 1, snap.Checkpoint.Jornada)
	assert.Len(t, snap.Users, 2)

	for _, m := range snap.Matches {
		assert.Equal(t, model.StatusPending, m.Status)
		assert.Equal(t, start.Add(time.Duration(m.Jornada-1)*10*time.Minute), m.Kickoff)
		assert.NotEqual(t, m.HomeTeamID, m.AwayTeamID)
	}
	assert.Equal(t, 18, snap.Matches[len(snap.Matches)-1].Jornada)
}

func TestParseLeagueRejectsBadSeeds(t *testing.T) {
	_, err := ParseLeague([]byte("teams:\n  - name: Solo\n"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = ParseLeague([]byte("teams:\n  - name: A\n  - name: a\n"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = ParseLeague([]byte("teams: [unterminated"))
	assert.Error(t, err)
}
