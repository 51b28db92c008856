// Package kafka publishes new jobs as JSON messages.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/notify"
)

var _ notify.Notifier = (*Producer)(nil)

//go:generate mockgen -source=producer.go -destination=mock_writer_test.go -package=kafka

// MessageWriter is the part of *kafka.Writer the producer uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the message payload for one new job
type Event struct {
	Listing      string              `json:"listing"`
	PositionType domain.PositionType `json:"position_type"`
	Job          domain.Job          `json:"job"`
}

// Producer writes one message per job, keyed by listing code
type Producer struct {
	writer MessageWriter
	clock  func() time.Time
}

// NewProducer creates a Kafka producer for the given broker and topic.
func NewProducer(broker, topic string) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: false,
	})
}

// NewProducerWithWriter builds a producer using a custom writer (tests).
func NewProducerWithWriter(writer MessageWriter) *Producer {
	return &Producer{writer: writer, clock: time.Now}
}

func (p *Producer) Name() string {
	return "kafka"
}

// Close shuts down the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Notify writes all jobs in a single batch
func (p *Producer) Notify(ctx context.Context, listing domain.Listing, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	now := p.clock().UTC()
	msgs := make([]kafka.Message, 0, len(jobs))

	for _, j := range jobs {
		payload, err := json.Marshal(Event{
			Listing:      listing.Code,
			PositionType: listing.PositionType,
			Job:          j,
		})
		if err != nil {
			return fmt.Errorf("kafka: encode job: %w", err)
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(listing.Code),
			Value: payload,
			Time:  now,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: write messages: %w", err)
	}
	return nil
}
