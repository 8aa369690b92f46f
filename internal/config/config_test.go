package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mefoolyhi/Nex/internal/game"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("nex", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, 11, cfg.FieldSize)
	assert.Equal(t, "One", cfg.First)
	assert.Equal(t, "Two", cfg.Second)
	assert.Equal(t, 500*time.Millisecond, cfg.BotDelay)
	assert.Equal(t, 2*time.Second, cfg.PenaltyPeriod)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.JSONLogs())

	opts := cfg.GameOptions()
	assert.Equal(t, game.RoleHuman, opts.FirstRole)
	assert.Equal(t, game.RoleBot, opts.SecondRole)
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("NEX_FIELD_SIZE", "7")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_FORMAT", "json")

	fs := flag.NewFlagSet("nex", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-first", "Biba", "-s", "Boba", "-second-role", "Human"})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.FieldSize)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.JSONLogs())
	assert.Equal(t, "Biba", cfg.First)
	assert.Equal(t, "Boba", cfg.Second)
	assert.Equal(t, game.RoleHuman, cfg.GameOptions().SecondRole)

	fs = flag.NewFlagSet("nex", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-n", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.FieldSize)
}

func TestParseConfigValidation(t *testing.T) {
	fs := flag.NewFlagSet("nex", flag.ContinueOnError)
	_, err := ParseConfig(fs, []string{"-field-size", "0", "-first-role", "wizard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field size 0")
	assert.Contains(t, err.Error(), "first role")

	fs = flag.NewFlagSet("nex", flag.ContinueOnError)
	_, err = ParseConfig(fs, []string{"-first", "Same", "-second", "Same"})
	require.Error(t, err)
}

func TestFieldSizeBoundMatchesBoard(t *testing.T) {
	cfg := Config{FieldSize: game.MaxSize, First: "a", Second: "b", FirstRole: "human", SecondRole: "bot"}
	require.NoError(t, cfg.Validate())

	cfg.FieldSize = game.MaxSize + 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field size 151")
}
