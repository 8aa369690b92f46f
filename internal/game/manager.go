package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Mefoolyhi/Nex/internal/logger"
)

const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrInvalidTurn   = errors.New("not your turn")
	ErrGameFinished  = errors.New("game already finished")
	ErrCellOccupied  = errors.New("cell already taken")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrSameNames     = errors.New("players need distinct names")
)

// GameState is a running session. Board is the current snapshot and History
// the chain that led to it, oldest first.
type GameState struct {
	ID        string
	Board     *Board
	History   []*Board
	Status    string
	Winner    string
	StartedAt time.Time
	EndedAt   time.Time
	Players   [2]*Player

	bots      map[string]*Bot
	humans    map[string]*Human
	chargedAt time.Time
}

// GameView is a copy of a GameState safe to read outside the manager.
type GameView struct {
	ID        string
	Board     *Board
	Status    string
	Winner    string
	Moves     int
	StartedAt time.Time
	EndedAt   time.Time
	Players   [2]Player
}

type GameOptions struct {
	Size       int
	First      string
	Second     string
	FirstRole  Role
	SecondRole Role
}

type Move struct {
	GameID string
	Player string
	Row    int
	Col    int
}

type MoveResult struct {
	Board  *Board
	Player string
	At     Coord
	Stroke Stroke
	Winner string
	IsDraw bool
}

type Manager struct {
	mu            sync.RWMutex
	games         map[string]*GameState
	rng           *rand.Rand
	penaltyPeriod time.Duration
	onFinish      func(GameView)
	now           func() time.Time
}

type ManagerConfig struct {
	PenaltyPeriod time.Duration
	Seed          int64
	OnFinish      func(GameView)
}

func NewManager(cfg ManagerConfig) *Manager {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		games:         make(map[string]*GameState),
		rng:           rand.New(rand.NewSource(seed)),
		penaltyPeriod: cfg.PenaltyPeriod,
		onFinish:      cfg.OnFinish,
		now:           time.Now,
	}
}

func (m *Manager) NewGame(opts GameOptions) (GameView, error) {
	if opts.First == "" {
		opts.First = "One"
	}
	if opts.Second == "" {
		opts.Second = "Two"
	}
	if opts.First == opts.Second {
		return GameView{}, fmt.Errorf("%w: %q", ErrSameNames, opts.First)
	}
	if opts.FirstRole == "" {
		opts.FirstRole = RoleHuman
	}
	if opts.SecondRole == "" {
		opts.SecondRole = RoleBot
	}
	board, err := New(opts.Size, opts.First, opts.Second)
	if err != nil {
		return GameView{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	g := &GameState{
		ID:        uuid.NewString(),
		Board:     board,
		History:   []*Board{board},
		Status:    StatusActive,
		StartedAt: now,
		chargedAt: now,
		Players: [2]*Player{
			NewPlayer(opts.First, opts.FirstRole, StrokeForward, opts.Size),
			NewPlayer(opts.Second, opts.SecondRole, StrokeBack, opts.Size),
		},
		bots:   make(map[string]*Bot),
		humans: make(map[string]*Human),
	}
	for _, p := range g.Players {
		if p.IsBot() {
			g.bots[p.Name] = NewBot(board, m.rng)
		} else {
			g.humans[p.Name] = &Human{}
		}
	}
	m.games[g.ID] = g
	logger.With(logrus.Fields{"game_id": g.ID, "size": opts.Size, "first": opts.First, "second": opts.Second}).Info("game created")
	return g.view(), nil
}

func (m *Manager) HandleMove(move Move) (MoveResult, GameView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[move.GameID]
	if !ok {
		return MoveResult{}, GameView{}, ErrGameNotFound
	}
	if g.Status == StatusFinished {
		return MoveResult{}, g.view(), ErrGameFinished
	}
	player := g.player(move.Player)
	if player == nil || g.Board.Active() != player.Name || player.IsBot() {
		return MoveResult{}, g.view(), ErrInvalidTurn
	}

	human := g.humans[player.Name]
	human.SetStep(Coord{Row: move.Row, Col: move.Col})
	next, played, err := human.Play(g.Board, player.Stroke)
	if err != nil {
		return MoveResult{}, g.view(), m.fail(g, move, err)
	}
	if !played {
		if _, ok := g.Board.Cell(move.Row, move.Col); !ok {
			return MoveResult{}, g.view(), fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, move.Row, move.Col)
		}
		return MoveResult{}, g.view(), ErrCellOccupied
	}
	res := m.commit(g, player, Coord{Row: move.Row, Col: move.Col}, next)
	return res, g.view(), nil
}

// PlayBots plays bot turns until a human is to move or the game ends.
func (m *Manager) PlayBots(gameID string) ([]MoveResult, GameView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return nil, GameView{}, ErrGameNotFound
	}
	var results []MoveResult
	for g.Status == StatusActive {
		player := g.player(g.Board.Active())
		if !player.IsBot() {
			break
		}
		at, err := g.bots[player.Name].ChooseMove(g.Board)
		if err != nil {
			return results, g.view(), err
		}
		next, err := g.Board.Move(at.Row, at.Col, player.Stroke)
		if err != nil {
			return results, g.view(), m.fail(g, Move{GameID: g.ID, Player: player.Name, Row: at.Row, Col: at.Col}, err)
		}
		results = append(results, m.commit(g, player, at, next))
	}
	return results, g.view(), nil
}

func (m *Manager) commit(g *GameState, player *Player, at Coord, next *Board) MoveResult {
	now := m.now()
	g.Board = next
	g.History = append(g.History, next)
	g.chargedAt = now
	player.TakePenalty(player.MovePenalty())

	res := MoveResult{Board: next, Player: player.Name, At: at, Stroke: player.Stroke}
	if winner, ok := next.Winner(); ok {
		res.Winner = winner
		g.Winner = winner
		m.finish(g, now)
	} else if next.Free() == 0 {
		res.IsDraw = true
		m.finish(g, now)
	}
	logger.With(logrus.Fields{
		"game_id": g.ID, "player": player.Name, "row": at.Row, "col": at.Col, "winner": res.Winner,
	}).Debug("move applied")
	return res
}

func (m *Manager) finish(g *GameState, now time.Time) {
	g.Status = StatusFinished
	g.EndedAt = now
	logger.With(logrus.Fields{"game_id": g.ID, "winner": g.Winner}).Info("game finished")
	if m.onFinish != nil {
		go m.onFinish(g.view())
	}
}

func (m *Manager) fail(g *GameState, move Move, err error) error {
	entry := logger.With(logrus.Fields{"game_id": g.ID, "player": move.Player, "row": move.Row, "col": move.Col})
	if errors.Is(err, ErrTopology) {
		entry.WithError(err).Error("board invariant broken")
	} else {
		entry.WithError(err).Warn("move refused")
	}
	return err
}

// Undo drops the latest snapshot. When that hands the turn to a bot facing
// a human, the bot's previous move is dropped as well. Scores keep every
// penalty already charged, and the game stays active so the active game
// count does not change.
func (m *Manager) Undo(gameID string) (GameView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return GameView{}, ErrGameNotFound
	}
	if g.Status == StatusFinished {
		return g.view(), ErrGameFinished
	}
	if len(g.History) < 2 {
		return g.view(), ErrNothingToUndo
	}
	g.pop()
	if active := g.player(g.Board.Active()); active.IsBot() && !g.player(g.Board.Waiting()).IsBot() && len(g.History) > 1 {
		g.pop()
	}
	g.chargedAt = m.now()
	return g.view(), nil
}

// ChargeWaiting takes one point from every human for each full penalty
// period spent on their turn.
func (m *Manager) ChargeWaiting(now time.Time) {
	if m.penaltyPeriod <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.games {
		if g.Status != StatusActive {
			continue
		}
		p := g.player(g.Board.Active())
		if p.IsBot() {
			continue
		}
		periods := int(now.Sub(g.chargedAt) / m.penaltyPeriod)
		if periods <= 0 {
			continue
		}
		p.TakePenalty(periods)
		g.chargedAt = g.chargedAt.Add(time.Duration(periods) * m.penaltyPeriod)
	}
}

func (m *Manager) GetGame(gameID string) (GameView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	if !ok {
		return GameView{}, false
	}
	return g.view(), true
}

// ActiveGames counts the games still in progress.
func (m *Manager) ActiveGames() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, g := range m.games {
		if g.Status == StatusActive {
			n++
		}
	}
	return n
}

func (g *GameState) player(name string) *Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (g *GameState) pop() {
	g.History = g.History[:len(g.History)-1]
	g.Board = g.History[len(g.History)-1]
}

func (g *GameState) view() GameView {
	return GameView{
		ID:        g.ID,
		Board:     g.Board,
		Status:    g.Status,
		Winner:    g.Winner,
		Moves:     len(g.History) - 1,
		StartedAt: g.StartedAt,
		EndedAt:   g.EndedAt,
		Players:   [2]Player{*g.Players[0], *g.Players[1]},
	}
}
