package simulation

import (
	"math"
	"sort"
	"time"

	"github.com/utakatalp/playoff-simulator/internal/league"
)

// TeamStats counts how often one team finished at each seed.
// Seeds[k] is the count for seed k+1.
type TeamStats struct {
	Seeds  []int
	Missed int
}

// Stats is the tally of a batch of trials, one entry per team in declaration order.
type Stats struct {
	Trials int
	Teams  []TeamStats
}

func NewStats(numTeams, numSeeds int) *Stats {
	s := &Stats{Teams: make([]TeamStats, numTeams)}
	for i := range s.Teams {
		s.Teams[i].Seeds = make([]int, numSeeds)
	}
	return s
}

// Record tallies one trial. Teams absent from seeds missed the playoffs.
func (s *Stats) Record(seeds league.SeedList) {
	s.Trials++
	for i := range s.Teams {
		s.Teams[i].Missed++
	}
	for k, team := range seeds {
		s.Teams[team].Seeds[k]++
		s.Teams[team].Missed--
	}
}

// Merge adds o into s elementwise.
func (s *Stats) Merge(o *Stats) {
	s.Trials += o.Trials
	for i := range s.Teams {
		for k, n := range o.Teams[i].Seeds {
			s.Teams[i].Seeds[k] += n
		}
		s.Teams[i].Missed += o.Teams[i].Missed
	}
}

// Result is a finished run.
type Result struct {
	season  *league.Season
	Stats   *Stats
	Seed    uint64
	Elapsed time.Duration
}

// Summary is what the reporting side receives for one team.
type Summary struct {
	Team         string      `json:"team"`
	MadePlayoffs int         `json:"madePlayoffs"`
	Byes         int         `json:"byes"`
	Seeds        map[int]int `json:"seeds"`
	Missed       int         `json:"missed"`
}

// Summaries returns one Summary per team in declaration order.
func (r *Result) Summaries() []Summary {
	byes := r.season.ByeSeeds()
	out := make([]Summary, len(r.Stats.Teams))
	for i, ts := range r.Stats.Teams {
		sum := Summary{
			Team:   r.season.TeamName(i),
			Seeds:  make(map[int]int, len(ts.Seeds)),
			Missed: ts.Missed,
		}
		for k, n := range ts.Seeds {
			sum.Seeds[k+1] = n
			sum.MadePlayoffs += n
			if k < byes {
				sum.Byes += n
			}
		}
		out[i] = sum
	}
	return out
}

// PlayoffOdds returns every team's chance of making the playoffs in percent,
// best first.
func (r *Result) PlayoffOdds() []league.Prediction {
	preds := make([]league.Prediction, 0, len(r.Stats.Teams))
	for _, sum := range r.Summaries() {
		p := float64(sum.MadePlayoffs) / float64(r.Stats.Trials) * 100.0
		preds = append(preds, league.Prediction{Team: sum.Team, Probability: math.Round(p*100) / 100})
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})
	return preds
}
