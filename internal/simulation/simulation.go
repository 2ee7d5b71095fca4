package simulation

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/utakatalp/playoff-simulator/internal/league"
)

// DefaultTrials is the number of seasons simulated when a run does not ask for a count.
const DefaultTrials = 1_000_000

// Workers check for cancellation this often.
const checkEvery = 1024

// Options controls one Monte Carlo run.
type Options struct {
	Trials  int
	Workers int
	// Seed drives every worker stream. Zero derives one from the clock.
	Seed uint64
}

// SamplerFunc builds the sampler a worker draws its points from.
type SamplerFunc func(seed uint64, worker int) league.Sampler

// GaussianSamplers gives worker i the PCG stream (seed, i).
func GaussianSamplers(seed uint64, worker int) league.Sampler {
	return league.NewGaussianSampler(rand.NewPCG(seed, uint64(worker)))
}

// Aggregator repeats a season many times and tallies where every team finishes.
type Aggregator struct {
	season     *league.Season
	log        *logrus.Entry
	newSampler SamplerFunc
}

func NewAggregator(season *league.Season, log *logrus.Entry) *Aggregator {
	return &Aggregator{
		season:     season,
		log:        log.WithField("component", "aggregator"),
		newSampler: GaussianSamplers,
	}
}

// WithSampler replaces the per-worker sampler factory.
func (a *Aggregator) WithSampler(f SamplerFunc) *Aggregator {
	a.newSampler = f
	return a
}

// Run partitions the trials across workers, each with a private stream and
// private counters, and merges the counters once every worker is done.
func (a *Aggregator) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Trials <= 0 {
		return nil, eris.Errorf("trial count must be positive, got %d", opts.Trials)
	}
	if opts.Workers <= 0 {
		return nil, eris.Errorf("worker count must be positive, got %d", opts.Workers)
	}
	workers := min(opts.Workers, opts.Trials)
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	log := a.log.WithFields(logrus.Fields{
		"trials":  opts.Trials,
		"workers": workers,
		"seed":    seed,
	})
	log.Info("starting simulation")
	start := time.Now()

	partials := make([]*Stats, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		trials := opts.Trials / workers
		if w < opts.Trials%workers {
			trials++
		}
		g.Go(func() error {
			stats, err := a.runWorker(ctx, w, trials, a.newSampler(seed, w))
			if err != nil {
				return eris.Wrapf(err, "worker %d", w)
			}
			log.WithField("worker", w).Debugf("worker finished %d trials", trials)
			partials[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("simulation failed")
		return nil, err
	}

	total := NewStats(a.season.NumTeams(), a.season.NumSeeds())
	for _, p := range partials {
		total.Merge(p)
	}

	elapsed := time.Since(start)
	log.WithField("elapsed", elapsed).Info("simulation finished")
	return &Result{season: a.season, Stats: total, Seed: seed, Elapsed: elapsed}, nil
}

func (a *Aggregator) runWorker(ctx context.Context, worker, trials int, sampler league.Sampler) (*Stats, error) {
	stats := NewStats(a.season.NumTeams(), a.season.NumSeeds())
	trial := a.season.NewTrial()
	for i := 0; i < trials; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrapf(err, "stopped after %d trials", i)
			}
		}
		seeds, err := trial.Run(sampler)
		if err != nil {
			return nil, eris.Wrapf(err, "trial %d", i)
		}
		stats.Record(seeds)
	}
	return stats, nil
}
