package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Mefoolyhi/Nex/internal/analytics"
	"github.com/Mefoolyhi/Nex/internal/config"
	"github.com/Mefoolyhi/Nex/internal/logger"
	"github.com/Mefoolyhi/Nex/internal/metrics"
	"github.com/Mefoolyhi/Nex/internal/server"
	"github.com/Mefoolyhi/Nex/internal/storage"
)

func main() {
	// a missing .env is fine, the environment alone is enough
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("load .env", err)
	}

	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatal("invalid configuration", err)
	}
	logger.Init(cfg.LogLevel, cfg.JSONLogs())

	producer := analytics.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	srv := server.New(server.Config{
		Defaults:      cfg.GameOptions(),
		BotDelay:      cfg.BotDelay,
		PenaltyPeriod: cfg.PenaltyPeriod,
		Seed:          cfg.Seed,
		Store:         storage.NewMemoryStore(),
		Analytics:     producer,
		Metrics:       metrics.New(),
	})

	g, err := srv.StartGame(cfg.GameOptions())
	if err != nil {
		logger.Fatal("start game", err)
	}
	logger.With(logrus.Fields{
		"game_id": g.ID,
		"size":    cfg.FieldSize,
		"first":   cfg.First,
		"second":  cfg.Second,
		"kafka":   producer != nil,
	}).Info("game ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cfg.Addr); err != nil {
		logger.Fatal("server stopped", err)
	}
	logger.Get().Info("bye")
}
