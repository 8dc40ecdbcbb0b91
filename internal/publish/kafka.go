// Package publish sends finished analysis results to Kafka, one message per
// symbol keyed by symbol.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alpha-signal/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: topic,
	}
}

// ResultEvent is the message body for one scored symbol.
type ResultEvent struct {
	RunID      string               `json:"run_id"`
	FinishedAt time.Time            `json:"finished_at"`
	Threshold  float64              `json:"threshold"`
	Result     domain.ScoringResult `json:"result"`
}

// PublishBatch writes every result of batch in a single call.
func (p *KafkaPublisher) PublishBatch(ctx context.Context, batch domain.Batch) error {
	msgs, err := Messages(batch)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d results to %s: %w", len(msgs), p.topic, err)
	}
	log.Debug().Str("topic", p.topic).Str("run_id", batch.RunID).Int("messages", len(msgs)).Msg("published analysis results")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Messages converts a batch into Kafka messages keyed by symbol so each
// symbol's history stays on one partition.
func Messages(batch domain.Batch) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(batch.Results))
	for _, res := range batch.Results {
		data, err := json.Marshal(ResultEvent{
			RunID:      batch.RunID,
			FinishedAt: batch.FinishedAt,
			Threshold:  batch.Threshold,
			Result:     res,
		})
		if err != nil {
			return nil, fmt.Errorf("encode %s event: %w", res.Symbol, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(res.Symbol),
			Value: data,
			Headers: []kafka.Header{
				{Key: "run_id", Value: []byte(batch.RunID)},
				{Key: "signal", Value: []byte(res.Signal)},
			},
		})
	}
	return msgs, nil
}
