package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

type CompletedGame struct {
	ID        string
	Winner    string
	Players   []string
	Size      int
	Moves     int
	StartedAt time.Time
	EndedAt   time.Time
}

type LeaderboardRow struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Games    int    `json:"games"`
}

type Store interface {
	SaveGame(ctx context.Context, game CompletedGame) error
	GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

// MemoryStore keeps finished games for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]CompletedGame
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]CompletedGame)}
}

// SaveGame ignores a game id it has already recorded.
func (s *MemoryStore) SaveGame(_ context.Context, game CompletedGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return nil
	}
	game.Players = append([]string(nil), game.Players...)
	s.games[game.ID] = game
	return nil
}

// GetLeaderboard ranks players by wins, then by name. A limit of zero or
// less returns every row.
func (s *MemoryStore) GetLeaderboard(_ context.Context, limit int) ([]LeaderboardRow, error) {
	s.mu.RLock()
	rows := make(map[string]*LeaderboardRow)
	row := func(name string) *LeaderboardRow {
		r, ok := rows[name]
		if !ok {
			r = &LeaderboardRow{Username: name}
			rows[name] = r
		}
		return r
	}
	for _, g := range s.games {
		for _, p := range g.Players {
			row(p).Games++
		}
		if g.Winner != "" {
			row(g.Winner).Wins++
		}
	}
	s.mu.RUnlock()

	res := make([]LeaderboardRow, 0, len(rows))
	for _, r := range rows {
		if r.Wins > 0 {
			res = append(res, *r)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Wins != res[j].Wins {
			return res[i].Wins > res[j].Wins
		}
		return res[i].Username < res[j].Username
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
