package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/stockpipe/data-clean-service/internal/models"
)

// Producer publishes pipeline events to the data pipeline topic.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishDataProcessed signals downstream consumers that a batch completed.
func (p *Producer) PublishDataProcessed(ctx context.Context, summary *models.BatchSummary) error {
	event := models.NewPipelineEvent(models.EventDataProcessed)
	event.FilesProcessed = summary.TotalFilesProcessed
	event.Summary = summary
	return p.publish(ctx, event.Event, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.PipelineEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
