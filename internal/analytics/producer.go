package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Mefoolyhi/Nex/internal/logger"
)

const (
	EventMovePlayed   = "move_played"
	EventGameFinished = "game_finished"
)

// Event is the envelope written to the topic.
type Event struct {
	Event     string         `json:"event"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes game events. A nil Producer drops everything, so
// callers never need to check whether analytics is configured.
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, now: time.Now}
}

// Publish keys the message by game id so one game's events stay ordered
// within a partition.
func (p *Producer) Publish(ctx context.Context, event string, payload map[string]any) {
	if p == nil || p.writer == nil {
		return
	}
	data, err := json.Marshal(Event{Event: event, Payload: payload, Timestamp: p.now().UTC()})
	if err != nil {
		logger.Get().WithError(err).Warn("analytics: encode event")
		return
	}
	msg := kafka.Message{Value: data}
	if id, ok := payload["gameId"].(string); ok {
		msg.Key = []byte(id)
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Get().WithError(err).WithField("event", event).Warn("kafka publish failed")
	}
}

func (p *Producer) Close() {
	if p == nil || p.writer == nil {
		return
	}
	_ = p.writer.Close()
}
