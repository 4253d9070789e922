// Package kafka publishes note events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/ragnotes/pkg/eventstream"
	"github.com/papercomputeco/ragnotes/pkg/logger"
)

// DefaultTopic is the topic note events are written to when none is configured.
const DefaultTopic = "ragnotes.notes"

// Config configures the Kafka publisher.
type Config struct {
	// Brokers is a comma separated list of host:port broker addresses.
	Brokers string

	// Topic to publish to. Defaults to DefaultTopic.
	Topic string

	// WriteTimeout bounds a single write. Zero uses the kafka-go default.
	WriteTimeout time.Duration
}

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes note events as JSON messages keyed by note ID.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Kafka-backed publisher.
func NewPublisher(c Config, logger *slog.Logger) (*Publisher, error) {
	brokers := splitBrokers(c.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers must be provided")
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           c.WriteTimeout,
	}

	logger.Info("kafka publisher configured",
		"brokers", brokers,
		"topic", topic,
	)

	return newPublisher(w, topic, logger), nil
}

func newPublisher(w messageWriter, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{writer: w, topic: topic, logger: logger}
}

// PublishNote encodes the event and writes it synchronously.
func (p *Publisher) PublishNote(ctx context.Context, event *eventstream.NoteEvent) error {
	if event == nil {
		return eventstream.ErrNilNoteEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal note event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(event.Note.ID, 10)),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.EventType, p.topic, err)
	}

	p.logger.Debug("published note event",
		"event_type", event.EventType,
		logger.NoteID(event.Note.ID),
	)
	return nil
}

// Close flushes pending writes and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
