package league

import "math"

// DefaultByeSeeds is the number of top seeds that skip the first playoff round
// when a league does not say otherwise.
const DefaultByeSeeds = 2

// Season is a validated League compiled into index form.
// It is immutable and safe to share between concurrent trials.
type Season struct {
	league    League
	index     map[string]int
	division  []int   // team -> division
	members   [][]int // division -> teams, declaration order
	matchups  [][2]int
	sameDiv   []bool // per matchup
	byeSeeds  int
	numSeeds  int
	wildcards int
}

// NewSeason validates l and precomputes the lookups every trial needs.
func NewSeason(l League) (*Season, error) {
	if len(l.Teams) == 0 {
		return nil, configErrorf("league has no teams")
	}
	if len(l.Divisions) == 0 {
		return nil, configErrorf("league has no divisions")
	}
	if l.Wildcards < 0 {
		return nil, configErrorf("wildcard count %d is negative", l.Wildcards)
	}

	s := &Season{
		league:    l,
		index:     make(map[string]int, len(l.Teams)),
		division:  make([]int, len(l.Teams)),
		members:   make([][]int, len(l.Divisions)),
		wildcards: l.Wildcards,
		numSeeds:  len(l.Divisions) + l.Wildcards,
	}

	for i, t := range l.Teams {
		if t.Name == "" {
			return nil, configErrorf("team at position %d has no name", i)
		}
		if _, dup := s.index[t.Name]; dup {
			return nil, configErrorf("team %q declared twice", t.Name)
		}
		if t.Variance < 0 || math.IsNaN(t.Variance) || math.IsInf(t.Variance, 0) {
			return nil, configErrorf("team %q has invalid variance %v", t.Name, t.Variance)
		}
		if math.IsNaN(t.Projected) || math.IsInf(t.Projected, 0) {
			return nil, configErrorf("team %q has invalid projection %v", t.Name, t.Projected)
		}
		s.index[t.Name] = i
		s.division[i] = -1
	}

	for d, div := range l.Divisions {
		if len(div.Teams) == 0 {
			return nil, configErrorf("division %q is empty", div.Name)
		}
		for _, name := range div.Teams {
			i, ok := s.index[name]
			if !ok {
				return nil, configErrorf("division %q references unknown team %q", div.Name, name)
			}
			if s.division[i] != -1 {
				return nil, configErrorf("team %q belongs to more than one division", name)
			}
			s.division[i] = d
		}
	}
	// Members are listed in declaration order regardless of how the division was written.
	for i, d := range s.division {
		if d == -1 {
			return nil, configErrorf("team %q belongs to no division", l.Teams[i].Name)
		}
		s.members[d] = append(s.members[d], i)
	}

	s.matchups = make([][2]int, len(l.Matchups))
	s.sameDiv = make([]bool, len(l.Matchups))
	for m, mu := range l.Matchups {
		home, ok := s.index[mu.Home]
		if !ok {
			return nil, configErrorf("matchup %d references unknown team %q", m, mu.Home)
		}
		away, ok := s.index[mu.Away]
		if !ok {
			return nil, configErrorf("matchup %d references unknown team %q", m, mu.Away)
		}
		if home == away {
			return nil, configErrorf("matchup %d pairs team %q with itself", m, mu.Home)
		}
		s.matchups[m] = [2]int{home, away}
		s.sameDiv[m] = s.division[home] == s.division[away]
	}

	if pool := len(l.Teams) - len(l.Divisions); pool < l.Wildcards {
		return nil, configErrorf("wildcard pool of %d teams cannot fill %d wildcard slots", pool, l.Wildcards)
	}

	switch {
	case l.ByeSeeds < 0:
		return nil, configErrorf("bye seed count %d is negative", l.ByeSeeds)
	case l.ByeSeeds == 0:
		s.byeSeeds = min(DefaultByeSeeds, s.numSeeds)
	case l.ByeSeeds > s.numSeeds:
		return nil, configErrorf("bye seed count %d exceeds %d playoff seeds", l.ByeSeeds, s.numSeeds)
	default:
		s.byeSeeds = l.ByeSeeds
	}

	return s, nil
}

// League returns the dataset the season was compiled from.
func (s *Season) League() League { return s.league }

// NumTeams returns the number of declared teams.
func (s *Season) NumTeams() int { return len(s.league.Teams) }

// NumSeeds returns the length of every SeedList: divisions plus wildcards.
func (s *Season) NumSeeds() int { return s.numSeeds }

// ByeSeeds returns how many top seeds count as a first round bye.
func (s *Season) ByeSeeds() int { return s.byeSeeds }

// Team returns the team declared at position i.
func (s *Season) Team(i int) Team { return s.league.Teams[i] }

// TeamName returns the name of the team declared at position i.
func (s *Season) TeamName(i int) string { return s.league.Teams[i].Name }

// Index returns the declaration index of the named team.
func (s *Season) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// DivisionOf returns the division index of team i.
func (s *Season) DivisionOf(i int) int { return s.division[i] }

// NewResults returns zeroed standings for every team, indexed by declaration order.
func (s *Season) NewResults() []TeamResult {
	results := make([]TeamResult, len(s.league.Teams))
	for i := range results {
		results[i].Team = i
	}
	return results
}
