package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/utakatalp/playoff-simulator/internal/config"
	"github.com/utakatalp/playoff-simulator/internal/dataset"
	"github.com/utakatalp/playoff-simulator/internal/league"
	"github.com/utakatalp/playoff-simulator/internal/logger"
	"github.com/utakatalp/playoff-simulator/internal/store"
)

// app carries what every subcommand needs once the root has resolved its configuration.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var configPath string

	root := &cobra.Command{
		Use:           "playoffsim",
		Short:         "Monte Carlo playoff seeding odds for a fantasy league",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ./playoffsim.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("league-file", "league.yaml", "league definition file")
	flags.String("database-url", "", "Postgres connection string; takes priority over --league-file")
	flags.Int("trials", 0, "number of seasons to simulate")
	flags.Int("workers", 0, "number of concurrent workers")
	flags.Uint64("seed", 0, "random seed (0 derives one from the clock)")
	for key, name := range map[string]string{
		"log_level":    "log-level",
		"log_format":   "log-format",
		"league_file":  "league-file",
		"database_url": "database-url",
		"trials":       "trials",
		"workers":      "workers",
		"seed":         "seed",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newRunCmd(a),
		newSampleCmd(a),
		newServeCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// openStore connects to the configured database.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, eris.New("database_url is not set")
	}
	return store.NewStore(ctx, a.cfg.DatabaseURL)
}

// loadSeason reads the league from the database when one is configured, else from the league file.
func (a *app) loadSeason(ctx context.Context) (*league.Season, error) {
	var (
		l   league.League
		err error
	)
	if a.cfg.DatabaseURL != "" {
		var st *store.Store
		if st, err = a.openStore(ctx); err != nil {
			return nil, err
		}
		defer st.Close()
		l, err = st.LoadLeague(ctx)
		a.log.WithField("source", "database").Debug("loading league")
	} else {
		l, err = dataset.Load(a.cfg.LeagueFile)
		a.log.WithField("source", a.cfg.LeagueFile).Debug("loading league")
	}
	if err != nil {
		return nil, err
	}
	return league.NewSeason(l)
}
