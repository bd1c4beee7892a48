package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/kafka-go"
)

// AnalyticsProducer ships move and result events to Kafka. A nil producer
// is valid and drops everything, so the game loop never has to care whether
// a broker is configured, and publishing is fire-and-forget.
type AnalyticsProducer struct {
	writer *kafka.Writer
}

func NewAnalyticsProducer(brokers []string, topic string) *AnalyticsProducer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &AnalyticsProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

type moveEvent struct {
	Type    string  `json:"type"`
	GameID  string  `json:"game_id"`
	Variant Variant `json:"variant"`
	Player  int     `json:"player"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Ply     int     `json:"ply"`
	IsAi    bool    `json:"is_ai"`
	At      int64   `json:"at"`
}

type resultEvent struct {
	Type    string  `json:"type"`
	GameID  string  `json:"game_id"`
	Variant Variant `json:"variant"`
	Winner  int     `json:"winner"`
	Plies   int     `json:"plies"`
	At      int64   `json:"at"`
}

func (p *AnalyticsProducer) PublishMove(gameID string, variant Variant, entry HistoryEntry, ply int) {
	if p == nil {
		return
	}
	p.publish(gameID, moveEvent{
		Type:    "move",
		GameID:  gameID,
		Variant: variant,
		Player:  playerToInt(entry.Player),
		X:       entry.Move.X,
		Y:       entry.Move.Y,
		Ply:     ply,
		IsAi:    entry.IsAi,
		At:      time.Now().UnixMilli(),
	})
}

func (p *AnalyticsProducer) PublishResult(gameID string, variant Variant, winner int, plies int) {
	if p == nil {
		return
	}
	p.publish(gameID, resultEvent{
		Type:    "result",
		GameID:  gameID,
		Variant: variant,
		Winner:  winner,
		Plies:   plies,
		At:      time.Now().UnixMilli(),
	})
}

func (p *AnalyticsProducer) publish(key string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload}); err != nil {
			log.Warn("analytics publish failed", "err", err)
		}
	}()
}

func (p *AnalyticsProducer) Close() {
	if p == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		log.Warn("analytics close failed", "err", err)
	}
}
