// ABOUTME: Kafka publisher for collection change events
// ABOUTME: JSON values keyed by user, delivery reports logged in the background

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaConfig configures the Kafka publisher
type KafkaConfig struct {
	Brokers string
	Topic   string
	Logger  *slog.Logger
}

// KafkaPublisher produces events to a single topic
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *slog.Logger
	done     chan struct{}
	closer   sync.Once
}

// NewKafkaPublisher connects a producer to the brokers
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         "tcg-binder",
		"acks":              "all",
		"retries":           10,
		"retry.backoff.ms":  100,
		"linger.ms":         10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	kp := &KafkaPublisher{
		producer: p,
		topic:    cfg.Topic,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go kp.handleDeliveryReports()

	return kp, nil
}

func (p *KafkaPublisher) handleDeliveryReports() {
	defer close(p.done)
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Error("Event delivery failed", "error", ev.TopicPartition.Error)
			} else {
				p.logger.Debug("Event delivered", "partition", ev.TopicPartition.String())
			}
		case kafka.Error:
			p.logger.Warn("Kafka client error", "error", ev)
		}
	}
}

// PublishCollectionChange enqueues e for delivery
func (p *KafkaPublisher) PublishCollectionChange(ctx context.Context, e CollectionChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := buildMessage(p.topic, e)
	if err != nil {
		return err
	}
	if err := p.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("failed to produce %s event: %w", e.EventType, err)
	}
	return nil
}

func buildMessage(topic string, e CollectionChange) (*kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType, err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(e.Key()),
		Value:          data,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(e.EventType)},
			{Key: "source", Value: []byte(e.Source)},
		},
	}, nil
}

// Close flushes pending events for up to timeoutMs and shuts the producer down.
// Returns the number of events that were not delivered.
func (p *KafkaPublisher) Close(timeoutMs int) int {
	remaining := 0
	p.closer.Do(func() {
		remaining = p.producer.Flush(timeoutMs)
		if remaining > 0 {
			p.logger.Warn("Events were not delivered", "count", remaining)
		}
		p.producer.Close()
		<-p.done
	})
	return remaining
}
