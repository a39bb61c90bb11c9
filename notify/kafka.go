package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/junaidrashid-git/storefront-api/models"
)

// NewKafkaProducer builds the sync producer used by KafkaSender.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// KafkaSender publishes order events as JSON. Messages are keyed by order
// reference so every event of one order lands on the same partition.
type KafkaSender struct {
	producer    sarama.SyncProducer
	placedTopic string
	statusTopic string
}

func NewKafkaSender(producer sarama.SyncProducer, topicPrefix string) *KafkaSender {
	return &KafkaSender{
		producer:    producer,
		placedTopic: topicPrefix + ".placed",
		statusTopic: topicPrefix + ".status-changed",
	}
}

func (k *KafkaSender) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	return k.publish(ctx, k.placedTopic, placedEvent(order))
}

func (k *KafkaSender) SendOrderStatusUpdate(ctx context.Context, order models.Order, oldStatus, newStatus models.OrderStatus) error {
	return k.publish(ctx, k.statusTopic, statusEvent(order, oldStatus, newStatus))
}

func (k *KafkaSender) publish(ctx context.Context, topic string, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", e.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(e.OrderRef),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (k *KafkaSender) Close() error {
	return k.producer.Close()
}
