// Package dataset reads and writes league files.
//
// A league file lists teams in declaration order, the divisions they belong
// to, the schedule as pairs of team names, and the wildcard count:
//
//	wildcards: 2
//	byeSeeds: 2
//	teams:
//	  Alpha: {projected: 110, variance: 225}
//	  Bravo: {projected: 98.5, variance: 180}
//	divisions:
//	  - name: East
//	    teams: [Alpha, Bravo]
//	matchups:
//	  - [Alpha, Bravo]
//
// Teams may also be written as a sequence of {name, projected, variance}.
package dataset

import (
	"bytes"
	"errors"
	"io"
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/utakatalp/playoff-simulator/internal/league"
)

type file struct {
	Wildcards int               `yaml:"wildcards"`
	ByeSeeds  int               `yaml:"byeSeeds,omitempty"`
	Teams     yaml.Node         `yaml:"teams"`
	Divisions []league.Division `yaml:"divisions"`
	Matchups  []pair            `yaml:"matchups"`
}

// pair is a matchup, written in flow style.
type pair []string

func (p pair) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, team := range p {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: team})
	}
	return n, nil
}

type projection struct {
	Projected float64 `yaml:"projected"`
	Variance  float64 `yaml:"variance"`
}

// Load reads the league file at path.
func Load(path string) (league.League, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return league.League{}, eris.Wrapf(err, "reading league file %s", path)
	}
	l, err := Parse(data)
	if err != nil {
		return league.League{}, eris.Wrapf(err, "parsing league file %s", path)
	}
	return l, nil
}

// Parse decodes a league file. It checks shape only; NewSeason validates content.
func Parse(data []byte) (league.League, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return league.League{}, eris.Wrap(league.ErrConfiguration, "league file is empty")
		}
		return league.League{}, eris.Wrap(league.ErrConfiguration, err.Error())
	}

	teams, err := decodeTeams(&f.Teams)
	if err != nil {
		return league.League{}, err
	}

	l := league.League{
		Teams:     teams,
		Divisions: f.Divisions,
		Wildcards: f.Wildcards,
		ByeSeeds:  f.ByeSeeds,
		Matchups:  make([]league.Matchup, 0, len(f.Matchups)),
	}
	for i, pair := range f.Matchups {
		if len(pair) != 2 {
			return league.League{}, eris.Wrapf(league.ErrConfiguration,
				"matchup %d lists %d teams, want 2", i, len(pair))
		}
		l.Matchups = append(l.Matchups, league.Matchup{Home: pair[0], Away: pair[1]})
	}
	return l, nil
}

// decodeTeams accepts a mapping of name to projection, keeping key order, or a sequence of teams.
func decodeTeams(node *yaml.Node) ([]league.Team, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := checkKeys(item, "name", "projected", "variance"); err != nil {
				return nil, err
			}
		}
		var teams []league.Team
		if err := node.Decode(&teams); err != nil {
			return nil, eris.Wrap(league.ErrConfiguration, err.Error())
		}
		return teams, nil
	case yaml.MappingNode:
		teams := make([]league.Team, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			if err := checkKeys(node.Content[i+1], "projected", "variance"); err != nil {
				return nil, eris.Wrapf(err, "team %q", node.Content[i].Value)
			}
			var p projection
			if err := node.Content[i+1].Decode(&p); err != nil {
				return nil, eris.Wrapf(league.ErrConfiguration, "team %q: %v", node.Content[i].Value, err)
			}
			teams = append(teams, league.Team{
				Name:      node.Content[i].Value,
				Projected: p.Projected,
				Variance:  p.Variance,
			})
		}
		return teams, nil
	default:
		return nil, eris.Wrapf(league.ErrConfiguration, "line %d: teams must be a mapping or a list", node.Line)
	}
}

// checkKeys rejects any key of a mapping node outside allowed.
// Node.Decode does not apply the decoder's KnownFields setting.
func checkKeys(node *yaml.Node, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return eris.Wrapf(league.ErrConfiguration, "line %d: unknown team field %q", key.Line, key.Value)
		}
	}
	return nil
}

// Write encodes l as a league file with teams in mapping form.
func Write(w io.Writer, l league.League) error {
	f := file{
		Wildcards: l.Wildcards,
		ByeSeeds:  l.ByeSeeds,
		Divisions: l.Divisions,
		Teams:     yaml.Node{Kind: yaml.MappingNode},
	}
	for _, t := range l.Teams {
		var value yaml.Node
		if err := value.Encode(projection{Projected: t.Projected, Variance: t.Variance}); err != nil {
			return eris.Wrapf(err, "encoding team %q", t.Name)
		}
		value.Style = yaml.FlowStyle
		f.Teams.Content = append(f.Teams.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.Name},
			&value,
		)
	}
	for _, m := range l.Matchups {
		f.Matchups = append(f.Matchups, pair{m.Home, m.Away})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return eris.Wrap(err, "encoding league file")
	}
	return eris.Wrap(enc.Close(), "flushing league file")
}
