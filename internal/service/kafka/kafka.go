package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/kotche/notebridge/internal/model"
	"github.com/segmentio/kafka-go"
	"log"
	"strconv"
	"time"
)

// batchTimeout keeps a synchronous write from waiting for a fuller batch.
const batchTimeout = 10 * time.Millisecond

// ErrMalformedEvent marks a message that was read but could not be decoded.
var ErrMalformedEvent = errors.New("malformed activity event")

type Publisher struct {
	producer *kafka.Writer
}

func NewPublisher(brokers []string, topic string, numPartitions, replicationFactor int) (*Publisher, error) {
	for _, broker := range brokers {
		if err := createTopic(topic, broker, numPartitions, replicationFactor); err != nil {
			return nil, err
		}
	}

	return &Publisher{producer: newWriter(brokers, topic)}, nil
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
	}
}

func (p *Publisher) Publish(ctx context.Context, event model.ActivityEvent) error {
	value, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	err = p.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(int64(event.ChatID), 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to send event '%s' to kafka: %w", event.ID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

type Consumer struct {
	consumer *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			CommitInterval: time.Second,
		}),
	}
}

// Delivery is one fetched message. Event is zero when decoding failed; the
// delivery still has to be committed to move past the message.
type Delivery struct {
	Event   model.ActivityEvent
	message kafka.Message
}

func (c *Consumer) FetchEvent(ctx context.Context) (Delivery, error) {
	msg, err := c.consumer.FetchMessage(ctx)
	if err != nil {
		return Delivery{}, fmt.Errorf("failed to fetch message from kafka: %w", err)
	}

	event, err := DecodeEvent(msg.Value)
	if err != nil {
		return Delivery{message: msg}, fmt.Errorf("offset %d: %w", msg.Offset, err)
	}
	return Delivery{Event: event, message: msg}, nil
}

func (c *Consumer) Commit(ctx context.Context, delivery Delivery) error {
	if err := c.consumer.CommitMessages(ctx, delivery.message); err != nil {
		return fmt.Errorf("failed to commit offset %d: %w", delivery.message.Offset, err)
	}
	return nil
}

func (c *Consumer) Close() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	return nil
}

// NopPublisher drops every event. It stands in when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.ActivityEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

func EncodeEvent(event model.ActivityEvent) ([]byte, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event '%s': %w", event.ID, err)
	}
	return value, nil
}

func DecodeEvent(value []byte) (model.ActivityEvent, error) {
	var event model.ActivityEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return model.ActivityEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.ID == "" || event.Kind == "" {
		return model.ActivityEvent{}, fmt.Errorf("%w: missing id or kind", ErrMalformedEvent)
	}
	return event, nil
}

func createTopic(topic, broker string, numPartitions, replicationFactor int) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka broker: %w", err)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
	if err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) {
			log.Printf("kafka topic '%s' already exists", topic)
			return nil
		}
		return fmt.Errorf("failed to create kafka topic '%s': %w", topic, err)
	}

	log.Printf("kafka topic '%s' created successfully", topic)
	return nil
}
