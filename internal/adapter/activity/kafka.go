package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"echopub/internal/core/domain"
)

// KafkaSink publishes activity records as JSON, keyed by campaign so the
// events of one campaign stay ordered within a partition.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaSink(writer *kafka.Writer) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) SaveActivity(ctx context.Context, a domain.Activity) error {
	value, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	key := a.CampaignID
	if key == "" {
		key = a.UserID
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "activity-type", Value: []byte(a.Type)},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
