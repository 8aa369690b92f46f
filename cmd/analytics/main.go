package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Mefoolyhi/Nex/internal/analytics"
	"github.com/Mefoolyhi/Nex/internal/logger"
)

type consumerConfig struct {
	Brokers  []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic    string        `env:"KAFKA_TOPIC"   envDefault:"nex-events"`
	GroupID  string        `env:"KAFKA_GROUP"   envDefault:"nex-analytics"`
	Every    time.Duration `env:"STATS_EVERY"   envDefault:"30s"`
	LogLevel string        `env:"LOG_LEVEL"     envDefault:"info"`
	JSONLogs bool          `env:"LOG_JSON"`
}

func main() {
	_ = godotenv.Load()

	var cfg consumerConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal("parse env", err)
	}
	logger.Init(cfg.LogLevel, cfg.JSONLogs)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	defer reader.Close()

	logger.With(logrus.Fields{
		"brokers": strings.Join(cfg.Brokers, ","),
		"topic":   cfg.Topic,
	}).Info("analytics consumer listening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats := analytics.NewStats()
	go report(ctx, stats, cfg.Every)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				printSummary(stats.Summary())
				return
			}
			logger.Fatal("read message", err)
		}
		var e analytics.Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			logger.Get().WithError(err).Warn("failed to unmarshal event")
			continue
		}
		stats.Record(e)

		logger.With(logrus.Fields{
			"event":   e.Event,
			"game_id": e.Payload["gameId"],
			"winner":  e.Payload["winner"],
		}).Debug("event")
	}
}

func report(ctx context.Context, stats *analytics.Stats, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			printSummary(stats.Summary())
		}
	}
}

func printSummary(s analytics.Summary) {
	logger.With(logrus.Fields{
		"total_games":  s.TotalGames,
		"draws":        s.Draws,
		"moves":        s.Moves,
		"avg_duration": s.AverageDuration,
		"top_winners":  s.TopWinners,
		"per_day":      s.GamesPerDay,
		"user_games":   s.UserGames,
	}).Info("analytics summary")
}
