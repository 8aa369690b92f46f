package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hotSeat(t *testing.T, m *Manager, size int) GameView {
	t.Helper()
	g, err := m.NewGame(GameOptions{Size: size, First: "1", Second: "2", FirstRole: RoleHuman, SecondRole: RoleHuman})
	require.NoError(t, err)
	return g
}

func TestNewGameDefaults(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 1})
	g, err := m.NewGame(GameOptions{Size: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, StatusActive, g.Status)
	assert.Equal(t, "One", g.Players[0].Name)
	assert.Equal(t, RoleHuman, g.Players[0].Role)
	assert.Equal(t, StrokeForward, g.Players[0].Stroke)
	assert.Equal(t, "Two", g.Players[1].Name)
	assert.Equal(t, RoleBot, g.Players[1].Role)
	assert.Equal(t, StrokeBack, g.Players[1].Stroke)
	assert.Equal(t, "One", g.Board.Active())
	assert.Equal(t, 1, m.ActiveGames())

	got, ok := m.GetGame(g.ID)
	require.True(t, ok)
	assert.Same(t, g.Board, got.Board)
}

func TestNewGameRejectsBadOptions(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 1})
	_, err := m.NewGame(GameOptions{Size: 3, First: "x", Second: "x"})
	require.ErrorIs(t, err, ErrSameNames)
	_, err = m.NewGame(GameOptions{Size: 0})
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestHandleMoveErrors(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 1})
	g := hotSeat(t, m, 3)

	_, _, err := m.HandleMove(Move{GameID: "missing", Player: "1"})
	require.ErrorIs(t, err, ErrGameNotFound)

	_, _, err = m.HandleMove(Move{GameID: g.ID, Player: "2", Row: 0, Col: 0})
	require.ErrorIs(t, err, ErrInvalidTurn)

	_, _, err = m.HandleMove(Move{GameID: g.ID, Player: "1", Row: 0, Col: 3})
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, view, err := m.HandleMove(Move{GameID: g.ID, Player: "1", Row: 0, Col: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Moves)

	_, view, err = m.HandleMove(Move{GameID: g.ID, Player: "2", Row: 0, Col: 0})
	require.ErrorIs(t, err, ErrCellOccupied)
	assert.Equal(t, 1, view.Moves)
	assert.Equal(t, "2", view.Board.Active())
}

func TestHandleMoveToWin(t *testing.T) {
	finished := make(chan GameView, 1)
	m := NewManager(ManagerConfig{Seed: 1, OnFinish: func(g GameView) { finished <- g }})
	g := hotSeat(t, m, 3)

	moves := []Move{
		{Player: "1", Row: 0, Col: 0},
		{Player: "2", Row: 2, Col: 0},
		{Player: "1", Row: 2, Col: 2},
		{Player: "2", Row: 1, Col: 1},
		{Player: "1", Row: 1, Col: 0},
	}
	for _, mv := range moves {
		mv.GameID = g.ID
		res, view, err := m.HandleMove(mv)
		require.NoError(t, err)
		assert.Empty(t, res.Winner)
		assert.Equal(t, StatusActive, view.Status)
	}

	res, view, err := m.HandleMove(Move{GameID: g.ID, Player: "2", Row: 2, Col: 1})
	require.NoError(t, err)
	assert.Equal(t, "2", res.Winner)
	assert.Equal(t, StrokeBack, res.Stroke)
	assert.Equal(t, StatusFinished, view.Status)
	assert.Equal(t, "2", view.Winner)
	assert.Equal(t, 6, view.Moves)
	assert.Equal(t, StartingScore(3)-3*HumanMovePenalty, view.Players[1].Score)

	select {
	case done := <-finished:
		assert.Equal(t, g.ID, done.ID)
		assert.Equal(t, "2", done.Winner)
	case <-time.After(time.Second):
		t.Fatal("finish callback not called")
	}

	_, _, err = m.HandleMove(Move{GameID: g.ID, Player: "1", Row: 3, Col: 0})
	require.ErrorIs(t, err, ErrGameFinished)
	assert.Equal(t, 0, m.ActiveGames())
}

func TestPlayBotsAnswersHuman(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 42})
	g, err := m.NewGame(GameOptions{Size: 5, First: "me", Second: "bot", FirstRole: RoleHuman, SecondRole: RoleBot})
	require.NoError(t, err)

	results, _, err := m.PlayBots(g.ID)
	require.NoError(t, err)
	assert.Empty(t, results, "human moves first")

	_, _, err = m.HandleMove(Move{GameID: g.ID, Player: "bot", Row: 0, Col: 0})
	require.ErrorIs(t, err, ErrInvalidTurn)

	_, _, err = m.HandleMove(Move{GameID: g.ID, Player: "me", Row: 4, Col: 2})
	require.NoError(t, err)

	results, view, err := m.PlayBots(g.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bot", results[0].Player)
	assert.NotEqual(t, Coord{4, 2}, results[0].At)
	assert.Equal(t, "me", view.Board.Active())
	assert.Equal(t, StartingScore(5)-BotMovePenalty, view.Players[1].Score)
}

func TestPlayBotsRunsBotGameToTheEnd(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 9})
	g, err := m.NewGame(GameOptions{Size: 4, First: "a", Second: "b", FirstRole: RoleBot, SecondRole: RoleBot})
	require.NoError(t, err)

	results, view, err := m.PlayBots(g.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, view.Status)
	require.NotEmpty(t, results)
	last := results[len(results)-1]
	assert.True(t, last.Winner != "" || last.IsDraw)
	assert.Equal(t, len(results), view.Moves)
}

func TestUndo(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 1})
	g := hotSeat(t, m, 3)

	_, err := m.Undo(g.ID)
	require.ErrorIs(t, err, ErrNothingToUndo)

	_, _, err = m.HandleMove(Move{GameID: g.ID, Player: "1", Row: 1, Col: 1})
	require.NoError(t, err)
	_, before, err := m.HandleMove(Move{GameID: g.ID, Player: "2", Row: 2, Col: 0})
	require.NoError(t, err)

	view, err := m.Undo(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Moves)
	assert.Equal(t, "2", view.Board.Active())
	cell, _ := view.Board.Cell(2, 0)
	assert.False(t, cell.Owned())
	cell, _ = before.Board.Cell(2, 0)
	assert.True(t, cell.Owned(), "older snapshots are left alone")

	_, err = m.Undo("missing")
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestUndoKeepsScores(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 1})
	g := hotSeat(t, m, 3)
	_, _, err := m.HandleMove(Move{GameID: g.ID, Player: "1", Row: 1, Col: 1})
	require.NoError(t, err)
	_, played, err := m.HandleMove(Move{GameID: g.ID, Player: "2", Row: 2, Col: 0})
	require.NoError(t, err)
	require.Equal(t, 90, played.Players[0].Score)
	require.Equal(t, 90, played.Players[1].Score)

	view, err := m.Undo(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Moves)
	assert.Equal(t, 90, view.Players[0].Score)
	assert.Equal(t, 90, view.Players[1].Score)
	assert.Equal(t, StatusActive, view.Status)
	assert.Equal(t, 1, m.ActiveGames())
}

func TestUndoAgainstBotDropsBotReply(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 5})
	g, err := m.NewGame(GameOptions{Size: 5, First: "me", Second: "bot", SecondRole: RoleBot})
	require.NoError(t, err)
	_, _, err = m.HandleMove(Move{GameID: g.ID, Player: "me", Row: 3, Col: 1})
	require.NoError(t, err)
	_, _, err = m.PlayBots(g.ID)
	require.NoError(t, err)

	view, err := m.Undo(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Moves)
	assert.Equal(t, "me", view.Board.Active())
}

func TestChargeWaiting(t *testing.T) {
	m := NewManager(ManagerConfig{Seed: 1, PenaltyPeriod: 2 * time.Second})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	g := hotSeat(t, m, 10)

	m.ChargeWaiting(start.Add(time.Second))
	view, _ := m.GetGame(g.ID)
	assert.Equal(t, 500, view.Players[0].Score)

	m.ChargeWaiting(start.Add(5 * time.Second))
	view, _ = m.GetGame(g.ID)
	assert.Equal(t, 498, view.Players[0].Score)

	m.ChargeWaiting(start.Add(6 * time.Second))
	view, _ = m.GetGame(g.ID)
	assert.Equal(t, 497, view.Players[0].Score)
	assert.Equal(t, 500, view.Players[1].Score)
}
