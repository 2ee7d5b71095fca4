package config

import (
	"errors"
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"github.com/utakatalp/playoff-simulator/internal/simulation"
)

// EnvPrefix prefixes every environment override, e.g. PLAYOFFSIM_TRIALS.
const EnvPrefix = "PLAYOFFSIM"

type Config struct {
	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Simulation
	Trials    int    `mapstructure:"trials"`
	MaxTrials int    `mapstructure:"max_trials"` // cap for API requests
	Workers   int    `mapstructure:"workers"`
	Seed      uint64 `mapstructure:"seed"`

	// League source; the database wins when both are set
	LeagueFile  string `mapstructure:"league_file"`
	DatabaseURL string `mapstructure:"database_url"`

	// Server
	Port string `mapstructure:"port"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("trials", simulation.DefaultTrials)
	v.SetDefault("max_trials", 10*simulation.DefaultTrials)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("seed", 0)
	v.SetDefault("league_file", "league.yaml")
	v.SetDefault("database_url", "")
	v.SetDefault("port", "8080")
}

// Load resolves the configuration from defaults, an optional config file and
// the environment. An empty path looks for playoffsim.yaml in the working directory.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("playoffsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "error reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "unable to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if c.Trials <= 0 {
		return eris.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.MaxTrials < c.Trials {
		return eris.Errorf("max_trials %d is below trials %d", c.MaxTrials, c.Trials)
	}
	if c.Workers <= 0 {
		return eris.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.LeagueFile == "" && c.DatabaseURL == "" {
		return eris.New("one of league_file or database_url is required")
	}
	return nil
}
