package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerWithoutBrokers(t *testing.T) {
	assert.Nil(t, NewProducer(nil, "topic"))
	assert.Nil(t, NewProducer([]string{"localhost:9092"}, ""))

	var p *Producer
	p.Publish(context.Background(), EventMovePlayed, nil)
	p.Close()
}

func TestPublish(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	w := &fakeWriter{}
	p := &Producer{writer: w, now: func() time.Time { return at }}

	p.Publish(context.Background(), EventGameFinished, map[string]any{"gameId": "g1", "winner": "One"})
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("g1"), w.msgs[0].Key)

	var e Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &e))
	assert.Equal(t, EventGameFinished, e.Event)
	assert.Equal(t, "One", e.Payload["winner"])
	assert.True(t, at.Equal(e.Timestamp))

	w.err = errors.New("broker down")
	p.Publish(context.Background(), EventMovePlayed, map[string]any{})
	assert.Len(t, w.msgs, 2)

	p.Close()
	assert.True(t, w.closed)
}

func TestStats(t *testing.T) {
	s := NewStats()
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Record(Event{Event: EventMovePlayed})
	s.Record(Event{Event: EventMovePlayed})
	s.Record(Event{Event: EventGameFinished, Timestamp: day, Payload: map[string]any{
		"winner": "One", "duration": 10.0, "players": []any{"One", "Two"},
	}})
	s.Record(Event{Event: EventGameFinished, Timestamp: day, Payload: map[string]any{
		"winner": "Two", "duration": 20.0, "players": []string{"One", "Two"},
	}})
	s.Record(Event{Event: EventGameFinished, Timestamp: day, Payload: map[string]any{
		"winner": "Two", "players": []string{"Two", "Three"},
	}})
	s.Record(Event{Event: EventGameFinished, Timestamp: day, Payload: map[string]any{"winner": ""}})

	sum := s.Summary()
	assert.Equal(t, 4, sum.TotalGames)
	assert.Equal(t, 1, sum.Draws)
	assert.Equal(t, 2, sum.Moves)
	assert.InDelta(t, 15.0, sum.AverageDuration, 1e-9)
	assert.Equal(t, []string{"Two", "One"}, sum.TopWinners)
	assert.Equal(t, map[string]int{"One": 2, "Two": 3, "Three": 1}, sum.UserGames)
	assert.Equal(t, 4, sum.GamesPerDay["2024-03-01"])
}
