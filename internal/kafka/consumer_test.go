package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpipe/data-clean-service/internal/models"
)

func TestDecodeTrigger(t *testing.T) {
	t.Run("accepts a data ingested event", func(t *testing.T) {
		payload := []byte(`{"event":"data_ingested","timestamp":"2024-01-01T10:00:00Z","files_processed":3}`)

		event, ok := decodeTrigger(payload)

		require.True(t, ok)
		assert.Equal(t, models.EventDataIngested, event.Event)
		assert.Equal(t, 3, event.FilesProcessed)
	})

	t.Run("ignores other event types", func(t *testing.T) {
		payload := []byte(`{"event":"data_processed","timestamp":"2024-01-01T10:00:00Z"}`)

		_, ok := decodeTrigger(payload)

		assert.False(t, ok)
	})

	t.Run("discards malformed payloads", func(t *testing.T) {
		for _, payload := range []string{
			"not json",
			"",
			`{"event":`,
			`["data_ingested"]`,
		} {
			_, ok := decodeTrigger([]byte(payload))
			assert.False(t, ok, "payload %q", payload)
		}
	})

	t.Run("tolerates missing optional fields", func(t *testing.T) {
		event, ok := decodeTrigger([]byte(`{"event":"data_ingested"}`))

		require.True(t, ok)
		assert.Zero(t, event.FilesProcessed)
		assert.Nil(t, event.Summary)
	})
}
