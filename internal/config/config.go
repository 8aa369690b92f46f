// Package config loads the nex settings from the environment and lets
// command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Mefoolyhi/Nex/internal/game"
)

const (
	MinFieldSize = 1
	MaxFieldSize = game.MaxSize
)

type Config struct {
	Addr          string        `env:"NEX_ADDR"           envDefault:"127.0.0.1:8080"`
	FieldSize     int           `env:"NEX_FIELD_SIZE"     envDefault:"11"`
	First         string        `env:"NEX_FIRST"          envDefault:"One"`
	Second        string        `env:"NEX_SECOND"         envDefault:"Two"`
	FirstRole     string        `env:"NEX_FIRST_ROLE"     envDefault:"human"`
	SecondRole    string        `env:"NEX_SECOND_ROLE"    envDefault:"bot"`
	BotDelay      time.Duration `env:"NEX_BOT_DELAY"      envDefault:"500ms"`
	PenaltyPeriod time.Duration `env:"NEX_PENALTY_PERIOD" envDefault:"2s"`
	Seed          int64         `env:"NEX_SEED"`
	KafkaBrokers  []string      `env:"KAFKA_BROKERS"      envSeparator:","`
	KafkaTopic    string        `env:"KAFKA_TOPIC"        envDefault:"nex-events"`
	LogLevel      string        `env:"LOG_LEVEL"          envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT"         envDefault:"text"`
}

// ParseConfig reads the environment into a Config, then applies flags
// from args on top of it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address of the local board server")
	fs.IntVar(&cfg.FieldSize, "field-size", cfg.FieldSize, "Field size")
	fs.IntVar(&cfg.FieldSize, "n", cfg.FieldSize, "Field size (shorthand)")
	fs.StringVar(&cfg.First, "first", cfg.First, "First player name")
	fs.StringVar(&cfg.First, "f", cfg.First, "First player name (shorthand)")
	fs.StringVar(&cfg.Second, "second", cfg.Second, "Second player name")
	fs.StringVar(&cfg.Second, "s", cfg.Second, "Second player name (shorthand)")
	fs.StringVar(&cfg.FirstRole, "first-role", cfg.FirstRole, "First player role: human or bot")
	fs.StringVar(&cfg.SecondRole, "second-role", cfg.SecondRole, "Second player role: human or bot")
	fs.DurationVar(&cfg.BotDelay, "bot-delay", cfg.BotDelay, "Pause before the bot answers")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.FieldSize < MinFieldSize || c.FieldSize > MaxFieldSize {
		errs = append(errs, fmt.Errorf("field size %d outside %d..%d", c.FieldSize, MinFieldSize, MaxFieldSize))
	}
	if _, err := game.ParseRole(c.FirstRole); err != nil {
		errs = append(errs, fmt.Errorf("first role: %w", err))
	}
	if _, err := game.ParseRole(c.SecondRole); err != nil {
		errs = append(errs, fmt.Errorf("second role: %w", err))
	}
	if strings.TrimSpace(c.First) == strings.TrimSpace(c.Second) {
		errs = append(errs, fmt.Errorf("players need distinct names, both are %q", c.First))
	}
	return errors.Join(errs...)
}

// GameOptions turns the launch settings into options for the first game.
func (c Config) GameOptions() game.GameOptions {
	first, _ := game.ParseRole(c.FirstRole)
	second, _ := game.ParseRole(c.SecondRole)
	return game.GameOptions{
		Size:       c.FieldSize,
		First:      c.First,
		Second:     c.Second,
		FirstRole:  first,
		SecondRole: second,
	}
}

func (c Config) JSONLogs() bool {
	return c.LogFormat == "json"
}
