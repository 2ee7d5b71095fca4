package league

import "github.com/rotisserie/eris"

var (
	// ErrConfiguration marks malformed static league data. It aborts a run.
	ErrConfiguration = eris.New("invalid league configuration")

	// ErrNoWinner means no candidate beat every other one under a criteria list.
	// The last criterion of every list is unique per team, so reaching it means a bug.
	ErrNoWinner = eris.New("no winner among candidates")
)

func configErrorf(format string, args ...any) error {
	return eris.Wrapf(ErrConfiguration, format, args...)
}
