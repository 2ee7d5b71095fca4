// internal/league/logic.go
package league

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws a team's point total for one matchup.
type Sampler interface {
	Points(t Team) int
}

// GaussianSampler draws points by inverse transform: a uniform quantile through
// the normal inverse CDF of the team's projection, rounded to the nearest integer.
// It is not safe for concurrent use; give every worker its own.
type GaussianSampler struct {
	rng *rand.Rand
}

func NewGaussianSampler(src rand.Source) *GaussianSampler {
	return &GaussianSampler{rng: rand.New(src)}
}

// Points samples t's score. Negative totals are possible and kept.
func (g *GaussianSampler) Points(t Team) int {
	dist := distuv.Normal{Mu: t.Projected, Sigma: math.Sqrt(t.Variance)}

	// Float64 is [0,1); the quantile at 0 is -Inf.
	u := g.rng.Float64()
	for u == 0 {
		u = g.rng.Float64()
	}
	// Halves round up.
	return int(math.Floor(dist.Quantile(u) + 0.5))
}

// ResolveMatchup credits both sides of one contest with their points, and
// splits one win (and one division win when sameDivision) between them.
func ResolveMatchup(home, away *TeamResult, homePoints, awayPoints int, sameDivision bool) {
	home.Points += homePoints
	away.Points += awayPoints

	switch {
	case homePoints > awayPoints:
		home.Wins++
		if sameDivision {
			home.DivisionWins++
		}
	case awayPoints > homePoints:
		away.Wins++
		if sameDivision {
			away.DivisionWins++
		}
	default:
		home.Wins += 0.5
		away.Wins += 0.5
		if sameDivision {
			home.DivisionWins += 0.5
			away.DivisionWins += 0.5
		}
	}
}

// SimulateMatchup samples matchup m and applies it to results.
func (s *Season) SimulateMatchup(m int, sampler Sampler, results []TeamResult) (homePoints, awayPoints int) {
	pair := s.matchups[m]
	homePoints = sampler.Points(s.league.Teams[pair[0]])
	awayPoints = sampler.Points(s.league.Teams[pair[1]])
	ResolveMatchup(&results[pair[0]], &results[pair[1]], homePoints, awayPoints, s.sameDiv[m])
	return homePoints, awayPoints
}

// Trial runs seasons one after another, reusing its buffers between runs.
// A Trial belongs to a single goroutine.
type Trial struct {
	season  *Season
	results []TeamResult
	seeds   SeedList
	winners []int
	pool    []int
	placed  []bool
}

func (s *Season) NewTrial() *Trial {
	return &Trial{
		season:  s,
		results: s.NewResults(),
		seeds:   make(SeedList, 0, s.numSeeds),
		winners: make([]int, 0, len(s.members)),
		pool:    make([]int, 0, len(s.league.Teams)),
		placed:  make([]bool, len(s.league.Teams)),
	}
}

// Run simulates one full season and returns its seeds.
// The returned list and Results stay valid until the next Run.
func (t *Trial) Run(sampler Sampler) (SeedList, error) {
	s := t.season

	// 1) zero the standings
	for i := range t.results {
		t.results[i] = TeamResult{Team: i}
	}
	clear(t.placed)
	t.seeds = t.seeds[:0]

	// 2) play the schedule
	for m := range s.matchups {
		s.SimulateMatchup(m, sampler, t.results)
	}

	// 3) one winner per division
	t.winners = t.winners[:0]
	for d, members := range s.members {
		winner, err := CalculateWinner(members, t.results, DivisionCriteria)
		if err != nil {
			return nil, eris.Wrapf(err, "division %q", s.league.Divisions[d].Name)
		}
		t.winners = append(t.winners, winner)
		t.placed[winner] = true
	}

	// 4) order the division winners by wildcard criteria
	remaining := append(t.pool[:0], t.winners...)
	for len(remaining) > 0 {
		winner, err := CalculateWinner(remaining, t.results, WildcardCriteria)
		if err != nil {
			return nil, eris.Wrap(err, "ordering division winners")
		}
		t.seeds = append(t.seeds, winner)
		remaining = without(remaining, winner)
	}

	// 5) fill the wildcard slots
	for slot := 0; slot < s.wildcards; slot++ {
		pool := t.pool[:0]
		for team, placed := range t.placed {
			if !placed {
				pool = append(pool, team)
			}
		}
		if len(pool) == 0 {
			return nil, configErrorf("wildcard pool exhausted after %d of %d slots", slot, s.wildcards)
		}
		winner, err := CalculateWinner(pool, t.results, WildcardCriteria)
		if err != nil {
			return nil, eris.Wrapf(err, "wildcard %d", slot+1)
		}
		t.seeds = append(t.seeds, winner)
		t.placed[winner] = true
	}

	return t.seeds, nil
}

// Results returns the standings of the last Run.
func (t *Trial) Results() []TeamResult { return t.results }

// SimulateSeason runs a single independent trial and returns copies of its seeds and standings.
func (s *Season) SimulateSeason(sampler Sampler) (SeedList, []TeamResult, error) {
	trial := s.NewTrial()
	seeds, err := trial.Run(sampler)
	if err != nil {
		return nil, nil, err
	}
	return append(SeedList(nil), seeds...), trial.results, nil
}

func without(teams []int, team int) []int {
	out := teams[:0]
	for _, t := range teams {
		if t != team {
			out = append(out, t)
		}
	}
	return out
}

// CalculateTable lists every team's standings for one trial: playoff teams by seed,
// then the rest by wildcard criteria.
func (s *Season) CalculateTable(results []TeamResult, seeds SeedList) []*TableEntry {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	seedOf := make([]int, len(results))
	for i, team := range seeds {
		seedOf[team] = i + 1
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		switch {
		case seedOf[a] != 0 && seedOf[b] != 0:
			return seedOf[a] < seedOf[b]
		case seedOf[a] != 0 || seedOf[b] != 0:
			return seedOf[a] != 0
		}
		return Beats(results[a], results[b], WildcardCriteria)
	})

	entries := make([]*TableEntry, 0, len(order))
	for _, team := range order {
		r := results[team]
		entries = append(entries, &TableEntry{
			Team:         s.TeamName(team),
			Wins:         r.Wins,
			DivisionWins: r.DivisionWins,
			Points:       r.Points,
			Seed:         seedOf[team],
		})
	}
	return entries
}

func PrintTable(w io.Writer, label string, table []*TableEntry) {
	fmt.Fprintln(w, label)
	fmt.Fprintf(w, "%-16s %5s %5s %6s %4s\n", "Team", "W", "DW", "PTS", "Seed")
	for _, entry := range table {
		seed := "-"
		if entry.Seed > 0 {
			seed = fmt.Sprint(entry.Seed)
		}
		fmt.Fprintf(w, "%-16s %5.1f %5.1f %6d %4s\n",
			entry.Team,
			entry.Wins,
			entry.DivisionWins,
			entry.Points,
			seed,
		)
	}
}
