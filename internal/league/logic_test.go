package league

import (
	"bytes"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSampler scores every team at its rounded projection, like a zero variance.
type fixedSampler struct{}

func (fixedSampler) Points(t Team) int { return int(math.Floor(t.Projected + 0.5)) }

// scriptedSampler replays scores in the order they are requested.
type scriptedSampler struct {
	scores []int
	next   int
}

func (s *scriptedSampler) Points(Team) int {
	p := s.scores[s.next]
	s.next++
	return p
}

func fourTeamLeague() League {
	return League{
		Teams: []Team{
			{Name: "Alpha", Projected: 110},
			{Name: "Bravo", Projected: 100},
			{Name: "Charlie", Projected: 90},
			{Name: "Delta", Projected: 120},
		},
		Divisions: []Division{
			{Name: "East", Teams: []string{"Alpha", "Bravo"}},
			{Name: "West", Teams: []string{"Charlie", "Delta"}},
		},
		Matchups: []Matchup{
			{Home: "Alpha", Away: "Bravo"},
			{Home: "Charlie", Away: "Delta"},
		},
	}
}

func mustSeason(t *testing.T, l League) *Season {
	t.Helper()
	s, err := NewSeason(l)
	require.NoError(t, err)
	return s
}

func TestGaussianSamplerZeroVariance(t *testing.T) {
	sampler := NewGaussianSampler(rand.NewPCG(1, 2))

	tests := []struct {
		projected float64
		want      int
	}{
		{projected: 100, want: 100},
		{projected: 100.4, want: 100},
		{projected: 100.5, want: 101},
		{projected: -3.5, want: -3},
	}
	for _, tt := range tests {
		for i := 0; i < 100; i++ {
			assert.Equal(t, tt.want, sampler.Points(Team{Name: "x", Projected: tt.projected}))
		}
	}
}

func TestGaussianSamplerMoments(t *testing.T) {
	sampler := NewGaussianSampler(rand.NewPCG(42, 7))
	team := Team{Name: "x", Projected: 100, Variance: 100}

	const n = 50000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		p := float64(sampler.Points(team))
		sum += p
		sumSq += p * p
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	assert.InDelta(t, 100, mean, 0.5)
	assert.InDelta(t, 100, variance, 8)
}

func TestGaussianSamplerDeterministic(t *testing.T) {
	team := Team{Name: "x", Projected: 95, Variance: 250}
	a := NewGaussianSampler(rand.NewPCG(9, 9))
	b := NewGaussianSampler(rand.NewPCG(9, 9))
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Points(team), b.Points(team))
	}
}

func TestResolveMatchup(t *testing.T) {
	tests := []struct {
		name               string
		homePts, awayPts   int
		sameDivision       bool
		wantHome, wantAway TeamResult
	}{
		{
			name:    "home wins across divisions",
			homePts: 120, awayPts: 90,
			wantHome: TeamResult{Wins: 1, Points: 120},
			wantAway: TeamResult{Points: 90},
		},
		{
			name:    "away wins in division",
			homePts: 80, awayPts: 81, sameDivision: true,
			wantHome: TeamResult{Points: 80},
			wantAway: TeamResult{Wins: 1, DivisionWins: 1, Points: 81},
		},
		{
			name:    "tie in division splits both",
			homePts: 100, awayPts: 100, sameDivision: true,
			wantHome: TeamResult{Wins: 0.5, DivisionWins: 0.5, Points: 100},
			wantAway: TeamResult{Wins: 0.5, DivisionWins: 0.5, Points: 100},
		},
		{
			name:    "tie across divisions splits wins only",
			homePts: -4, awayPts: -4,
			wantHome: TeamResult{Wins: 0.5, Points: -4},
			wantAway: TeamResult{Wins: 0.5, Points: -4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var home, away TeamResult
			ResolveMatchup(&home, &away, tt.homePts, tt.awayPts, tt.sameDivision)

			assert.Equal(t, tt.wantHome, home)
			assert.Equal(t, tt.wantAway, away)
			assert.Equal(t, 1.0, home.Wins+away.Wins)
			assert.LessOrEqual(t, home.DivisionWins+away.DivisionWins, 1.0)
		})
	}
}

func TestSimulateMatchupAccumulates(t *testing.T) {
	s := mustSeason(t, fourTeamLeague())
	results := s.NewResults()
	sampler := NewGaussianSampler(rand.NewPCG(3, 4))

	for i := 0; i < 200; i++ {
		before := results[0].Wins + results[1].Wins
		s.SimulateMatchup(0, sampler, results)
		require.Equal(t, before+1, results[0].Wins+results[1].Wins)
	}
	assert.Equal(t, 200.0, results[0].DivisionWins+results[1].DivisionWins)
	assert.Zero(t, results[2].Wins+results[3].Wins)
}

func TestSimulateSeasonEndToEnd(t *testing.T) {
	s := mustSeason(t, fourTeamLeague())

	seeds, results, err := s.SimulateSeason(fixedSampler{})
	require.NoError(t, err)

	// Delta outscores Alpha, both with one win.
	assert.Equal(t, SeedList{3, 0}, seeds)
	assert.Equal(t, 1.0, results[0].Wins)
	assert.Equal(t, 1.0, results[3].Wins)
	assert.Equal(t, 1, seeds.Seed(3))
	assert.Equal(t, 2, seeds.Seed(0))
	assert.Zero(t, seeds.Seed(1))
	assert.Zero(t, seeds.Seed(2))
}

func TestSimulateSeasonTie(t *testing.T) {
	l := League{
		Teams: []Team{
			{Name: "Alpha", Projected: 100},
			{Name: "Bravo", Projected: 100},
		},
		Divisions: []Division{{Name: "Only", Teams: []string{"Alpha", "Bravo"}}},
		Matchups:  []Matchup{{Home: "Alpha", Away: "Bravo"}},
		Wildcards: 1,
	}
	s := mustSeason(t, l)

	seeds, results, err := s.SimulateSeason(NewGaussianSampler(rand.NewPCG(5, 5)))
	require.NoError(t, err)

	assert.Equal(t, 0.5, results[0].Wins)
	assert.Equal(t, 0.5, results[1].Wins)
	assert.Equal(t, 0.5, results[0].DivisionWins)
	assert.Equal(t, 0.5, results[1].DivisionWins)
	// Everything ties, so the later declared team takes the division.
	assert.Equal(t, SeedList{1, 0}, seeds)
}

func TestSimulateSeasonWildcards(t *testing.T) {
	l := League{
		Teams: []Team{
			{Name: "A1"}, {Name: "A2"}, {Name: "A3"},
			{Name: "B1"}, {Name: "B2"}, {Name: "B3"},
		},
		Divisions: []Division{
			{Name: "A", Teams: []string{"A1", "A2", "A3"}},
			{Name: "B", Teams: []string{"B1", "B2", "B3"}},
		},
		Matchups: []Matchup{
			{Home: "A1", Away: "A2"}, // 10-20
			{Home: "A1", Away: "A3"}, // 30-5
			{Home: "A2", Away: "A3"}, // 30-0
			{Home: "B1", Away: "B2"}, // 50-40
			{Home: "B1", Away: "A3"}, // 0-1
			{Home: "B2", Away: "B3"}, // 60-59
			{Home: "A1", Away: "B3"}, // 70-10
		},
		Wildcards: 2,
	}
	s := mustSeason(t, l)
	sampler := &scriptedSampler{scores: []int{10, 20, 30, 5, 30, 0, 50, 40, 0, 1, 60, 59, 70, 10}}

	seeds, results, err := s.SimulateSeason(sampler)
	require.NoError(t, err)

	// A2: 2W/2DW 50pts, A1: 2W/1DW 110pts, A3: 1W/0DW 6pts
	// B1: 1W/1DW 50pts, B2: 1W/1DW 100pts, B3: 0W 69pts
	assert.Equal(t, 2.0, results[1].DivisionWins)
	// Division winners A2 (division wins beat A1's points) and B2 (points).
	// Seeds: A2 (2 wins) ahead of B2, then wildcards A1 (2 wins) and B1 (1 win, 50 pts).
	// A3 has 1 win and 6 points, so B1 ranks ahead of it.
	assert.Equal(t, SeedList{1, 4, 0, 3}, seeds)
	assert.Len(t, seeds, s.NumSeeds())
}

func TestSimulateSeasonDeterministic(t *testing.T) {
	l := fourTeamLeague()
	for i := range l.Teams {
		l.Teams[i].Variance = 400
	}
	l.Matchups = append(l.Matchups,
		Matchup{Home: "Alpha", Away: "Delta"},
		Matchup{Home: "Bravo", Away: "Charlie"},
	)
	l.Wildcards = 1
	s := mustSeason(t, l)

	a := s.NewTrial()
	b := s.NewTrial()
	samplerA := NewGaussianSampler(rand.NewPCG(11, 0))
	samplerB := NewGaussianSampler(rand.NewPCG(11, 0))
	for i := 0; i < 500; i++ {
		seedsA, err := a.Run(samplerA)
		require.NoError(t, err)
		seedsB, err := b.Run(samplerB)
		require.NoError(t, err)
		require.Equal(t, seedsA, seedsB)
		require.Equal(t, a.Results(), b.Results())
	}
}

func TestSeedListProperties(t *testing.T) {
	l := League{Wildcards: 3}
	names := []string{"N1", "N2", "N3", "N4", "S1", "S2", "S3", "S4", "W1", "W2", "W3"}
	for i, name := range names {
		l.Teams = append(l.Teams, Team{Name: name, Projected: 90 + float64(i), Variance: 300})
	}
	l.Divisions = []Division{
		{Name: "N", Teams: names[0:4]},
		{Name: "S", Teams: names[4:8]},
		{Name: "W", Teams: names[8:]},
	}
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			l.Matchups = append(l.Matchups, Matchup{Home: names[i], Away: names[j]})
		}
	}
	s := mustSeason(t, l)
	trial := s.NewTrial()
	sampler := NewGaussianSampler(rand.NewPCG(21, 12))

	for i := 0; i < 2000; i++ {
		seeds, err := trial.Run(sampler)
		require.NoError(t, err)
		require.Len(t, seeds, len(l.Divisions)+l.Wildcards)

		seen := map[int]bool{}
		for _, team := range seeds {
			require.False(t, seen[team], "team %d seeded twice", team)
			seen[team] = true
		}

		divisions := map[int]bool{}
		for _, team := range seeds[:len(l.Divisions)] {
			divisions[s.DivisionOf(team)] = true
		}
		require.Len(t, divisions, len(l.Divisions), "every division has exactly one winner in the top seeds")

		var wins float64
		for _, r := range trial.Results() {
			wins += r.Wins
		}
		require.Equal(t, float64(len(l.Matchups)), wins)
	}
}

func TestCalculateTable(t *testing.T) {
	s := mustSeason(t, fourTeamLeague())
	seeds, results, err := s.SimulateSeason(fixedSampler{})
	require.NoError(t, err)

	table := s.CalculateTable(results, seeds)
	require.Len(t, table, 4)

	got := make([]string, 0, len(table))
	for _, e := range table {
		got = append(got, e.Team)
	}
	// Non-qualifiers are ordered by wins then points: Bravo 100 ahead of Charlie 90.
	assert.Equal(t, []string{"Delta", "Alpha", "Bravo", "Charlie"}, got)
	assert.Equal(t, 1, table[0].Seed)
	assert.Zero(t, table[3].Seed)

	var buf bytes.Buffer
	PrintTable(&buf, "Week 1", table)
	assert.Contains(t, buf.String(), "Week 1\n")
	assert.Contains(t, buf.String(), "Delta")
	assert.Contains(t, buf.String(), "  120")
}
