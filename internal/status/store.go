// Package status mirrors service state to the Redis status store.
package status

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpipe/data-clean-service/internal/models"
)

// Key holding the service's status hash, read by the dashboard service.
const Key = "data_clean_status"

// Connection retry policy: exhaustion is fatal to the process.
const (
	maxRetries = 10
	retryDelay = 5 * time.Second
)

// Store writes ServiceStatus records wholesale into a Redis hash.
// Last write wins.
type Store struct {
	client *redis.Client
}

// Connect dials Redis with a bounded number of attempts and a fixed backoff.
// It returns an error only after every attempt has failed.
func Connect(ctx context.Context, host, port string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, port),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := client.Ping(ctx).Err(); err == nil {
			log.Printf("Successfully connected to Redis at %s:%s", host, port)
			return &Store{client: client}, nil
		} else {
			lastErr = err
		}
		log.Printf("Redis connection attempt %d/%d failed: %v", attempt, maxRetries, lastErr)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				client.Close()
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, lastErr)
}

// Update writes the status record into the hash. Only populated optional
// fields are written, mirroring the flat scalar layout consumers expect.
func (s *Store) Update(ctx context.Context, st models.ServiceStatus) error {
	fields := map[string]interface{}{
		"status":    st.Status,
		"timestamp": st.Timestamp,
		"message":   st.Message,
	}
	if st.Error != "" {
		fields["error"] = st.Error
	}
	if st.FilesProcessed > 0 {
		fields["files_processed"] = st.FilesProcessed
	}
	if st.ProcessedFiles != "" {
		fields["processed_files"] = st.ProcessedFiles
	}
	if st.AverageQualityScore > 0 {
		fields["average_quality_score"] = st.AverageQualityScore
	}

	if err := s.client.HSet(ctx, Key, fields).Err(); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// Get reads the current status hash.
func (s *Store) Get(ctx context.Context) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, Key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	return fields, nil
}

// Ping checks connection liveness.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
