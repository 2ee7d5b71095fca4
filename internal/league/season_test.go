package league

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeason(t *testing.T) {
	s := mustSeason(t, fourTeamLeague())

	assert.Equal(t, 4, s.NumTeams())
	assert.Equal(t, 2, s.NumSeeds())
	assert.Equal(t, 2, s.ByeSeeds())
	assert.Equal(t, "Charlie", s.TeamName(2))
	i, ok := s.Index("Delta")
	require.True(t, ok)
	assert.Equal(t, 3, i)
	assert.Equal(t, 1, s.DivisionOf(i))
	_, ok = s.Index("Echo")
	assert.False(t, ok)

	results := s.NewResults()
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, TeamResult{Team: i}, r)
	}
}

func TestNewSeasonByeSeeds(t *testing.T) {
	l := fourTeamLeague()
	l.Divisions = []Division{{Name: "All", Teams: []string{"Alpha", "Bravo", "Charlie", "Delta"}}}
	s := mustSeason(t, l)
	assert.Equal(t, 1, s.ByeSeeds(), "default is capped at the number of seeds")

	l.Wildcards = 2
	l.ByeSeeds = 3
	s = mustSeason(t, l)
	assert.Equal(t, 3, s.ByeSeeds())
}

func TestNewSeasonRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *League)
	}{
		{"no teams", func(l *League) { l.Teams = nil }},
		{"no divisions", func(l *League) { l.Divisions = nil }},
		{"empty division", func(l *League) { l.Divisions = append(l.Divisions, Division{Name: "North"}) }},
		{"unnamed team", func(l *League) { l.Teams[0].Name = "" }},
		{"duplicate team", func(l *League) { l.Teams[1].Name = "Alpha" }},
		{"negative variance", func(l *League) { l.Teams[0].Variance = -1 }},
		{"NaN variance", func(l *League) { l.Teams[0].Variance = math.NaN() }},
		{"infinite projection", func(l *League) { l.Teams[0].Projected = math.Inf(1) }},
		{"unknown team in division", func(l *League) { l.Divisions[0].Teams = append(l.Divisions[0].Teams, "Echo") }},
		{"team in two divisions", func(l *League) { l.Divisions[1].Teams = append(l.Divisions[1].Teams, "Alpha") }},
		{"team in no division", func(l *League) { l.Divisions[1].Teams = []string{"Delta"} }},
		{"unknown team in matchup", func(l *League) { l.Matchups[0].Away = "Echo" }},
		{"team plays itself", func(l *League) { l.Matchups[0].Away = "Alpha" }},
		{"negative wildcards", func(l *League) { l.Wildcards = -1 }},
		{"wildcard pool too small", func(l *League) { l.Wildcards = 3 }},
		{"negative bye seeds", func(l *League) { l.ByeSeeds = -1 }},
		{"too many bye seeds", func(l *League) { l.ByeSeeds = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := fourTeamLeague()
			tt.mutate(&l)
			_, err := NewSeason(l)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestNewSeasonAllowsFullWildcardPool(t *testing.T) {
	l := fourTeamLeague()
	l.Wildcards = 2
	s := mustSeason(t, l)

	seeds, _, err := s.SimulateSeason(fixedSampler{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, []int(seeds))
	assert.Equal(t, SeedList{3, 0, 1, 2}, seeds)
}
