package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/utakatalp/playoff-simulator/internal/api"
	"github.com/utakatalp/playoff-simulator/internal/dataset"
	"github.com/utakatalp/playoff-simulator/internal/league"
	"github.com/utakatalp/playoff-simulator/internal/logger"
	"github.com/utakatalp/playoff-simulator/internal/report"
	"github.com/utakatalp/playoff-simulator/internal/simulation"
)

func newRunCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the remaining schedule and print every team's seed odds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tag, err := language.Parse(lang)
			if err != nil {
				return eris.Wrapf(err, "parsing language %q", lang)
			}
			season, err := a.loadSeason(cmd.Context())
			if err != nil {
				return err
			}

			res, err := simulation.NewAggregator(season, logger.WithComponent(a.log, "cli")).
				Run(cmd.Context(), simulation.Options{
					Trials:  a.cfg.Trials,
					Workers: a.cfg.Workers,
					Seed:    a.cfg.Seed,
				})
			if err != nil {
				return err
			}
			a.log.WithField("elapsed", res.Elapsed).Info("simulation finished")
			return report.Render(cmd.OutOrStdout(), res, tag)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "language used to format percentages")
	return cmd
}

func newSampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Simulate one season and print its final table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			season, err := a.loadSeason(cmd.Context())
			if err != nil {
				return err
			}
			seed := a.cfg.Seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}

			seeds, results, err := season.SimulateSeason(league.NewGaussianSampler(rand.NewPCG(seed, 0)))
			if err != nil {
				return err
			}
			a.log.WithField("seed", seed).Debug("sample season")
			league.PrintTable(cmd.OutOrStdout(), "Final table", season.CalculateTable(results, seeds))
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the league and on-demand simulations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			season, err := a.loadSeason(ctx)
			if err != nil {
				return err
			}

			handler := api.NewServer(season, api.Limits{
				DefaultTrials: a.cfg.Trials,
				MaxTrials:     a.cfg.MaxTrials,
				Workers:       a.cfg.Workers,
			}, logger.WithComponent(a.log, "server"))
			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				a.log.WithField("port", a.cfg.Port).Info("Server started")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return eris.Wrap(err, "server failed")
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "shutting down server")
			}
			if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server failed")
			}
			return nil
		},
	}
	cmd.Flags().String("port", "8080", "port to listen on")
	_ = a.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Validate a league file and store it in the database",
		Long:  "Validate a league file and store it in the database, replacing any league already there. Defaults to league_file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := a.cfg.LeagueFile
			if len(args) == 1 {
				path = args[0]
			}

			l, err := dataset.Load(path)
			if err != nil {
				return err
			}
			if _, err := league.NewSeason(l); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			if err := st.SaveLeague(ctx, l); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"teams":    len(l.Teams),
				"matchups": len(l.Matchups),
			}).Info("league imported")
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the configured league as a league file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			season, err := a.loadSeason(cmd.Context())
			if err != nil {
				return err
			}
			return dataset.Write(cmd.OutOrStdout(), season.League())
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the league tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			a.log.Info("Migrations completed")
			return nil
		},
	}
}
