package report

import (
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/utakatalp/playoff-simulator/internal/simulation"
)

// Render writes every team's playoff odds, in declaration order, as percentages of the trials run.
func Render(w io.Writer, res *simulation.Result, tag language.Tag) error {
	p := message.NewPrinter(tag)
	rw := &errWriter{w: w}
	trials := res.Stats.Trials

	// The seed is printed unformatted so it can be passed back to --seed.
	p.Fprintf(rw, "Simulated %d seasons (seed %s)\n\n", trials, strconv.FormatUint(res.Seed, 10))

	for _, sum := range res.Summaries() {
		p.Fprintf(rw, "--- %s ---\n\n", sum.Team)
		p.Fprintf(rw, "Made playoffs: %s\n", Percent(p, sum.MadePlayoffs, trials))
		p.Fprintf(rw, "First round bye: %s\n\n", Percent(p, sum.Byes, trials))
		for seed := 1; seed <= len(sum.Seeds); seed++ {
			p.Fprintf(rw, "Seed %d: %s\n", seed, Percent(p, sum.Seeds[seed], trials))
		}
		p.Fprintln(rw)
	}
	return eris.Wrap(rw.err, "writing report")
}

// Percent formats count out of trials with two decimals.
func Percent(p *message.Printer, count, trials int) string {
	if trials == 0 {
		return p.Sprintf("%.2f%%", 0.0)
	}
	return p.Sprintf("%.2f%%", 100*float64(count)/float64(trials))
}

// errWriter keeps the first write error so rendering can ignore it until the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}
