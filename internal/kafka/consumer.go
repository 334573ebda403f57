package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/stockpipe/data-clean-service/internal/models"
)

// Consumer subscribes to the data pipeline topic and forwards upstream
// "data arrived" events as triggers for the orchestrator. Any message whose
// payload is not a parseable pipeline event is logged and discarded.
type Consumer struct {
	reader   *kafka.Reader
	triggers chan models.PipelineEvent
}

// NewConsumer creates a new Kafka consumer for pipeline trigger events.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:   reader,
		triggers: make(chan models.PipelineEvent, 16),
	}
}

// Triggers returns the channel carrying decoded data_ingested events.
func (c *Consumer) Triggers() <-chan models.PipelineEvent {
	return c.triggers
}

// Start begins consuming messages from Kafka.
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Kafka consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			event, ok := decodeTrigger(msg.Value)
			if !ok {
				continue
			}

			select {
			case c.triggers <- event:
			default:
				// A cycle is already queued; coalescing is safe because
				// discovery re-scans on every cycle.
				log.Println("Trigger channel full, dropping data ingested event")
			}
		}
	}
}

// decodeTrigger parses a message payload and reports whether it is an
// upstream data_ingested event worth acting on.
func decodeTrigger(data []byte) (models.PipelineEvent, bool) {
	var event models.PipelineEvent
	if err := json.Unmarshal(data, &event); err != nil {
		log.Printf("Invalid JSON in pipeline message: %v", err)
		return models.PipelineEvent{}, false
	}
	if event.Event != models.EventDataIngested {
		return models.PipelineEvent{}, false
	}
	return event, true
}

// Close closes the Kafka consumer.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
