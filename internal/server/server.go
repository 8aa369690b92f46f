package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mefoolyhi/Nex/internal/analytics"
	"github.com/Mefoolyhi/Nex/internal/game"
	"github.com/Mefoolyhi/Nex/internal/logger"
	"github.com/Mefoolyhi/Nex/internal/metrics"
	"github.com/Mefoolyhi/Nex/internal/storage"
)

// Server exposes the board engine to one local rendering client over HTTP
// and a websocket state stream.
type Server struct {
	router      *gin.Engine
	manager     *game.Manager
	store       storage.Store
	analytics   *analytics.Producer
	metrics     *metrics.Metrics
	defaults    game.GameOptions
	connections map[string]map[*wsClient]struct{}
	connMu      sync.RWMutex
	botDelay    time.Duration
	sweepEvery  time.Duration
}

type Config struct {
	Defaults      game.GameOptions
	BotDelay      time.Duration
	PenaltyPeriod time.Duration
	Seed          int64
	Store         storage.Store
	Analytics     *analytics.Producer
	Metrics       *metrics.Metrics
}

func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	store := cfg.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	s := &Server{
		router:      router,
		store:       store,
		analytics:   cfg.Analytics,
		metrics:     cfg.Metrics,
		defaults:    cfg.Defaults,
		connections: make(map[string]map[*wsClient]struct{}),
		botDelay:    cfg.BotDelay,
		sweepEvery:  cfg.PenaltyPeriod,
	}
	s.manager = game.NewManager(game.ManagerConfig{
		PenaltyPeriod: cfg.PenaltyPeriod,
		Seed:          cfg.Seed,
		OnFinish:      s.onFinish,
	})

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	router.GET("/leaderboard", s.handleLeaderboard)
	router.POST("/games", s.handleCreateGame)
	router.GET("/games/:id", s.handleGetGame)
	router.POST("/games/:id/moves", s.handleMove)
	router.POST("/games/:id/undo", s.handleUndo)
	router.GET("/games/:id/nearby", s.handleNearby)
	router.GET("/ws", s.handleWS)
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Manager() *game.Manager { return s.manager }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.sweeper(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.With(logrus.Fields{"addr": addr}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.closeConnections()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) sweeper(ctx context.Context) {
	if s.sweepEvery <= 0 {
		return
	}
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.manager.ChargeWaiting(now)
		}
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.With(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	rows, err := s.store.GetLeaderboard(c.Request.Context(), 10)
	if err != nil {
		logger.Get().WithError(err).Error("leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// StartGame starts a game and lets the bot open when it holds the first
// seat.
func (s *Server) StartGame(opts game.GameOptions) (game.GameView, error) {
	g, err := s.manager.NewGame(opts)
	if err != nil {
		return game.GameView{}, err
	}
	s.metrics.GameStarted()
	s.metrics.SetActiveGames(s.manager.ActiveGames())
	s.scheduleBots(g.ID)
	return g, nil
}

// submit runs a human move and everything that follows it.
func (s *Server) submit(move game.Move) (game.GameView, error) {
	res, g, err := s.manager.HandleMove(move)
	switch {
	case errors.Is(err, game.ErrCellOccupied):
		s.metrics.Move(metrics.ResultOccupied)
		return g, err
	case err != nil:
		s.metrics.Move(metrics.ResultRejected)
		return g, err
	}
	s.moved(g, res)
	s.broadcastState(g)
	s.scheduleBots(g.ID)
	return g, nil
}

func (s *Server) scheduleBots(gameID string) {
	if s.botDelay <= 0 {
		s.playBots(gameID)
		return
	}
	time.AfterFunc(s.botDelay, func() { s.playBots(gameID) })
}

func (s *Server) playBots(gameID string) {
	results, g, err := s.manager.PlayBots(gameID)
	for _, res := range results {
		s.moved(g, res)
	}
	if err != nil {
		logger.With(logrus.Fields{"game_id": gameID}).WithError(err).Error("bot turn failed")
	}
	if len(results) > 0 {
		s.broadcastState(g)
	}
}

func (s *Server) moved(g game.GameView, res game.MoveResult) {
	s.metrics.Move(metrics.ResultAccepted)
	s.analytics.Publish(context.Background(), analytics.EventMovePlayed, map[string]any{
		"gameId": g.ID,
		"player": res.Player,
		"row":    res.At.Row,
		"col":    res.At.Col,
		"stroke": res.Stroke.String(),
		"winner": res.Winner,
	})
}

func (s *Server) onFinish(g game.GameView) {
	players := []string{g.Players[0].Name, g.Players[1].Name}
	if err := s.store.SaveGame(context.Background(), storage.CompletedGame{
		ID:        g.ID,
		Winner:    g.Winner,
		Players:   players,
		Size:      g.Board.Size(),
		Moves:     g.Moves,
		StartedAt: g.StartedAt,
		EndedAt:   g.EndedAt,
	}); err != nil {
		logger.With(logrus.Fields{"game_id": g.ID}).WithError(err).Error("save finished game")
	}

	outcome := metrics.OutcomeWin
	if g.Winner == "" {
		outcome = metrics.OutcomeDraw
	}
	s.metrics.GameFinished(outcome)
	s.metrics.SetActiveGames(s.manager.ActiveGames())

	s.analytics.Publish(context.Background(), analytics.EventGameFinished, map[string]any{
		"gameId":    g.ID,
		"winner":    g.Winner,
		"players":   players,
		"size":      g.Board.Size(),
		"moves":     g.Moves,
		"duration":  g.EndedAt.Sub(g.StartedAt).Seconds(),
		"startedAt": g.StartedAt,
		"endedAt":   g.EndedAt,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidTurn),
		errors.Is(err, game.ErrCellOccupied),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrNothingToUndo):
		return http.StatusConflict
	case errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, game.ErrInvalidSize),
		errors.Is(err, game.ErrSameNames):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
