package analytics

import (
	"sort"
	"sync"
	"time"
)

// Stats aggregates finished games read back from the topic.
type Stats struct {
	mu            sync.Mutex
	totalGames    int
	draws         int
	moves         int
	winnerCounts  map[string]int
	userGames     map[string]int
	gamesPerDay   map[string]int
	gameDurations []float64
}

func NewStats() *Stats {
	return &Stats{
		winnerCounts: make(map[string]int),
		userGames:    make(map[string]int),
		gamesPerDay:  make(map[string]int),
	}
}

func (s *Stats) Record(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Event {
	case EventMovePlayed:
		s.moves++
	case EventGameFinished:
		s.totalGames++
		if winner, ok := e.Payload["winner"].(string); ok && winner != "" {
			s.winnerCounts[winner]++
		} else {
			s.draws++
		}
		if d, ok := e.Payload["duration"].(float64); ok {
			s.gameDurations = append(s.gameDurations, d)
		}
		s.gamesPerDay[e.Timestamp.Format(time.DateOnly)]++
		// payloads decoded from JSON carry []any, fresh ones []string
		switch players := e.Payload["players"].(type) {
		case []any:
			for _, p := range players {
				if name, ok := p.(string); ok {
					s.userGames[name]++
				}
			}
		case []string:
			for _, name := range players {
				s.userGames[name]++
			}
		}
	}
}

// Summary is a point-in-time copy of the aggregates.
type Summary struct {
	TotalGames      int
	Draws           int
	Moves           int
	AverageDuration float64
	TopWinners      []string
	WinnerCounts    map[string]int
	UserGames       map[string]int
	GamesPerDay     map[string]int
}

func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		TotalGames:   s.totalGames,
		Draws:        s.draws,
		Moves:        s.moves,
		WinnerCounts: copyCounts(s.winnerCounts),
		UserGames:    copyCounts(s.userGames),
		GamesPerDay:  copyCounts(s.gamesPerDay),
	}
	if len(s.gameDurations) > 0 {
		total := 0.0
		for _, d := range s.gameDurations {
			total += d
		}
		sum.AverageDuration = total / float64(len(s.gameDurations))
	}
	for name := range s.winnerCounts {
		sum.TopWinners = append(sum.TopWinners, name)
	}
	sort.Slice(sum.TopWinners, func(i, j int) bool {
		a, b := sum.TopWinners[i], sum.TopWinners[j]
		if s.winnerCounts[a] != s.winnerCounts[b] {
			return s.winnerCounts[a] > s.winnerCounts[b]
		}
		return a < b
	})
	return sum
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
