package league

// Team is a club with a scoring projection for every matchup it plays.
type Team struct {
	Name      string  `json:"name" yaml:"name"`
	Projected float64 `json:"projected" yaml:"projected"`
	Variance  float64 `json:"variance" yaml:"variance"`
}

// Division groups teams that compete for one division title.
type Division struct {
	Name  string   `json:"name" yaml:"name"`
	Teams []string `json:"teams" yaml:"teams"`
}

// Matchup is one contest between two teams. Side order carries no meaning.
type Matchup struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// League is the static dataset a season is simulated from.
// Teams are kept in declaration order; that order is the tie-break of last resort.
type League struct {
	Teams     []Team     `json:"teams"`
	Divisions []Division `json:"divisions"`
	Matchups  []Matchup  `json:"matchups"`
	Wildcards int        `json:"wildcards"`
	ByeSeeds  int        `json:"byeSeeds"`
}

// TeamResult holds one team's standings within a single trial.
type TeamResult struct {
	Team         int
	Wins         float64
	DivisionWins float64
	Points       int
}

// SeedList is the playoff field of one trial; position 0 is seed 1.
// Entries are team declaration indexes.
type SeedList []int

// Seed returns the 1-based seed of team, or 0 when it missed the playoffs.
func (s SeedList) Seed(team int) int {
	for i, t := range s {
		if t == team {
			return i + 1
		}
	}
	return 0
}

// Prediction pairs a team with a probability in percent.
type Prediction struct {
	Team        string  `json:"team"`
	Probability float64 `json:"probability"`
}

// TableEntry holds the standings info for one team after a trial.
type TableEntry struct {
	Team         string  `json:"team"`
	Wins         float64 `json:"wins"`
	DivisionWins float64 `json:"divisionWins"`
	Points       int     `json:"points"`
	Seed         int     `json:"seed,omitempty"`
}
