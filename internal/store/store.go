package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"github.com/utakatalp/playoff-simulator/internal/league"
)

// Postgres error class for integrity_constraint_violation.
const integrityViolation = "23"

// Store wraps a Postgres connection holding a league dataset.
type Store struct {
	DB *sql.DB
}

// NewStore opens a Postgres connection using the given connection string.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, eris.Wrap(err, "opening database")
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "pinging database")
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS divisions (
		    position INT  NOT NULL PRIMARY KEY,
		    name     TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS teams (
		    position  INT              NOT NULL PRIMARY KEY,
		    name      TEXT             NOT NULL UNIQUE,
		    division  TEXT             NOT NULL REFERENCES divisions(name),
		    projected DOUBLE PRECISION NOT NULL,
		    variance  DOUBLE PRECISION NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS matchups (
		    id        SERIAL PRIMARY KEY,
		    home_team TEXT NOT NULL REFERENCES teams(name),
		    away_team TEXT NOT NULL REFERENCES teams(name)
		);`,
		`CREATE TABLE IF NOT EXISTS league_settings (
		    id        INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		    wildcards INT NOT NULL,
		    bye_seeds INT NOT NULL DEFAULT 0
		);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return eris.Wrap(err, "migrating")
		}
	}
	return nil
}

// SaveLeague replaces the stored dataset with l in one transaction.
func (s *Store) SaveLeague(ctx context.Context, l league.League) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin SaveLeague tx")
	}
	defer tx.Rollback()

	if err := clearAll(ctx, tx); err != nil {
		return err
	}

	// 1) divisions, then a lookup of each team's division
	divisionOf := make(map[string]string, len(l.Teams))
	for i, d := range l.Divisions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO divisions (position, name) VALUES ($1, $2)`, i, d.Name,
		); err != nil {
			return classify(err, "inserting division %q", d.Name)
		}
		for _, team := range d.Teams {
			divisionOf[team] = d.Name
		}
	}

	// 2) teams in declaration order
	for i, t := range l.Teams {
		div, ok := divisionOf[t.Name]
		if !ok {
			return eris.Wrapf(league.ErrConfiguration, "team %q belongs to no division", t.Name)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teams (position, name, division, projected, variance) VALUES ($1, $2, $3, $4, $5)`,
			i, t.Name, div, t.Projected, t.Variance,
		); err != nil {
			return classify(err, "inserting team %q", t.Name)
		}
	}

	// 3) schedule
	for _, m := range l.Matchups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO matchups (home_team, away_team) VALUES ($1, $2)`, m.Home, m.Away,
		); err != nil {
			return classify(err, "inserting matchup %s vs %s", m.Home, m.Away)
		}
	}

	// 4) settings
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO league_settings (id, wildcards, bye_seeds) VALUES (1, $1, $2)`,
		l.Wildcards, l.ByeSeeds,
	); err != nil {
		return eris.Wrap(err, "inserting league settings")
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "commit SaveLeague tx")
	}
	return nil
}

// LoadLeague reads the stored dataset back in declaration order.
func (s *Store) LoadLeague(ctx context.Context) (league.League, error) {
	var l league.League

	if err := s.DB.QueryRowContext(ctx,
		`SELECT wildcards, bye_seeds FROM league_settings WHERE id = 1`,
	).Scan(&l.Wildcards, &l.ByeSeeds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, eris.Wrap(league.ErrConfiguration, "no league stored")
		}
		return l, eris.Wrap(err, "querying league settings")
	}

	divIndex := map[string]int{}
	rows, err := s.DB.QueryContext(ctx, `SELECT name FROM divisions ORDER BY position`)
	if err != nil {
		return l, eris.Wrap(err, "querying divisions")
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return l, eris.Wrap(err, "scanning division row")
		}
		divIndex[name] = len(l.Divisions)
		l.Divisions = append(l.Divisions, league.Division{Name: name})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return l, eris.Wrap(err, "iterating division rows")
	}

	rows, err = s.DB.QueryContext(ctx,
		`SELECT name, division, projected, variance FROM teams ORDER BY position`)
	if err != nil {
		return l, eris.Wrap(err, "querying teams")
	}
	for rows.Next() {
		var t league.Team
		var div string
		if err := rows.Scan(&t.Name, &div, &t.Projected, &t.Variance); err != nil {
			rows.Close()
			return l, eris.Wrap(err, "scanning team row")
		}
		l.Teams = append(l.Teams, t)
		d := divIndex[div]
		l.Divisions[d].Teams = append(l.Divisions[d].Teams, t.Name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return l, eris.Wrap(err, "iterating team rows")
	}

	rows, err = s.DB.QueryContext(ctx, `SELECT home_team, away_team FROM matchups ORDER BY id`)
	if err != nil {
		return l, eris.Wrap(err, "querying matchups")
	}
	defer rows.Close()
	for rows.Next() {
		var m league.Matchup
		if err := rows.Scan(&m.Home, &m.Away); err != nil {
			return l, eris.Wrap(err, "scanning matchup row")
		}
		l.Matchups = append(l.Matchups, m)
	}
	if err := rows.Err(); err != nil {
		return l, eris.Wrap(err, "iterating matchup rows")
	}
	return l, nil
}

// DeleteAll removes the stored dataset.
func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin DeleteAll tx")
	}
	defer tx.Rollback()
	if err := clearAll(ctx, tx); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "commit DeleteAll tx")
}

func clearAll(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"matchups", "teams", "divisions", "league_settings"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return eris.Wrapf(err, "deleting all %s", table)
		}
	}
	return nil
}

// classify turns constraint violations from malformed data into configuration errors.
func classify(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == integrityViolation {
		return eris.Wrapf(league.ErrConfiguration, "%s: %s", msg, pqErr.Message)
	}
	return eris.Wrap(err, msg)
}
