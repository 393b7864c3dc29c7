package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tiendaluna/telemetry/internal/config"
)

// KafkaProducer hands accepted events to the downstream topic. Writes are
// batched and async; the handler does not wait for broker acknowledgment.
type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: time.Millisecond * 100,
		Async:        true,
	}

	return &KafkaProducer{writer: writer}, nil
}

// ProduceEvent publishes the event keyed by session id so one session's
// events land on one partition in order.
func (p *KafkaProducer) ProduceEvent(ctx context.Context, sessionID string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sessionID),
		Value: data,
	})
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
