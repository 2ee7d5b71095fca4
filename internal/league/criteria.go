package league

import "github.com/rotisserie/eris"

// Criterion extracts one comparable value from a team's standings. Higher ranks better.
type Criterion func(r TeamResult) float64

func byWins(r TeamResult) float64         { return r.Wins }
func byDivisionWins(r TeamResult) float64 { return r.DivisionWins }
func byPoints(r TeamResult) float64       { return float64(r.Points) }

// byDeclaration favours the later declared team. It is unique per team, so it ends every cascade.
func byDeclaration(r TeamResult) float64 { return float64(r.Team) }

var (
	// DivisionCriteria picks a division winner.
	DivisionCriteria = []Criterion{byWins, byDivisionWins, byPoints, byDeclaration}

	// WildcardCriteria picks wildcards and orders the division winners.
	WildcardCriteria = []Criterion{byWins, byPoints, byDeclaration}
)

// Beats reports whether a outranks b: for some k, a is at least as good as b on
// every criterion before k and strictly better on criterion k.
func Beats(a, b TeamResult, criteria []Criterion) bool {
	for k := range criteria {
		if beatsAt(a, b, criteria, k) {
			return true
		}
	}
	return false
}

func beatsAt(a, b TeamResult, criteria []Criterion, k int) bool {
	for _, c := range criteria[:k] {
		if c(a) < c(b) {
			return false
		}
	}
	return criteria[k](a) > criteria[k](b)
}

// CalculateWinner returns the candidate that beats every other candidate.
func CalculateWinner(candidates []int, results []TeamResult, criteria []Criterion) (int, error) {
	if len(candidates) == 0 {
		return -1, configErrorf("no candidates to rank")
	}

	for _, team := range candidates {
		beatsAll := true
		for _, other := range candidates {
			if team == other {
				continue
			}
			if !Beats(results[team], results[other], criteria) {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			return team, nil
		}
	}
	return -1, eris.Wrapf(ErrNoWinner, "ranking %d candidates on %d criteria", len(candidates), len(criteria))
}
