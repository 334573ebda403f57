package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockpipe/data-clean-service/internal/discovery"
	"github.com/stockpipe/data-clean-service/internal/models"
)

// StatusReporter mirrors service state to the external status store.
type StatusReporter interface {
	Update(ctx context.Context, st models.ServiceStatus) error
}

// EventPublisher broadcasts pipeline events on the event bus.
type EventPublisher interface {
	PublishDataProcessed(ctx context.Context, summary *models.BatchSummary) error
}

// HistoryArchive persists per-file stats and batch summaries for later
// inspection. Optional; archiving failures never fail a file.
type HistoryArchive interface {
	RecordRun(inputFile string, stats *models.ProcessingStats) error
	RecordBatch(summary *models.BatchSummary) error
}

// Service is the pipeline orchestrator: one logical loop alternating between
// event triggers and a fixed processing interval. All file work happens on
// this single loop.
type Service struct {
	dataDir   string
	interval  time.Duration
	processor *Processor
	status    StatusReporter
	publisher EventPublisher
	triggers  <-chan models.PipelineEvent
	history   HistoryArchive
}

// NewService wires the orchestrator. history may be nil; triggers may be nil
// when no event bus subscription exists (interval-only operation).
func NewService(dataDir string, interval time.Duration, status StatusReporter, publisher EventPublisher, triggers <-chan models.PipelineEvent, history HistoryArchive) *Service {
	return &Service{
		dataDir:   dataDir,
		interval:  interval,
		processor: NewProcessor(dataDir),
		status:    status,
		publisher: publisher,
		triggers:  triggers,
		history:   history,
	}
}

// Run processes any existing files, then alternates between upstream event
// triggers and the fixed interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	log.Println("Starting data clean service")
	s.report(ctx, models.NewServiceStatus(models.StatusStarted, "Data clean service started"))

	s.ProcessAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Data clean service stopping")
			s.report(context.Background(), models.NewServiceStatus(models.StatusStopped, "Data clean service stopped"))
			return nil
		case ev := <-s.triggers:
			if ev.Event == models.EventDataIngested {
				log.Println("Received data ingested event, starting processing")
				s.ProcessAll(ctx)
			}
		case <-ticker.C:
			s.ProcessAll(ctx)
		}
	}
}

// ProcessAll runs one orchestration cycle: discover work, process each item
// independently, then aggregate and report. A failure in one file never
// aborts the batch.
func (s *Service) ProcessAll(ctx context.Context) {
	log.Println("Starting stock data processing")
	s.report(ctx, models.NewServiceStatus(models.StatusProcessing, "Starting stock data processing"))

	items := discovery.FindUnprocessed(s.dataDir)
	if len(items) == 0 {
		log.Println("No unprocessed files found")
		s.report(ctx, models.NewServiceStatus(models.StatusIdle, "No files to process"))
		return
	}

	var processed []models.ProcessedFile
	for _, item := range items {
		stats, err := s.processor.ProcessFile(item)
		if err != nil {
			// Recorded and excluded from the batch; the batch continues.
			log.Printf("Failed to process %s: %v", item.Path, err)
			failure := &models.ProcessingStats{FileType: item.Kind, Error: err.Error()}
			s.archiveRun(item, failure)
			continue
		}

		input := filepath.Base(item.Path)
		processed = append(processed, models.ProcessedFile{
			InputFile: input,
			FileType:  stats.FileType,
			Stats:     stats,
		})
		s.archiveRun(item, stats)
	}

	if len(processed) == 0 {
		s.report(ctx, models.NewServiceStatus(models.StatusError, "No files could be processed successfully"))
		return
	}

	summary := buildBatchSummary(processed)
	if err := emitBatchSummary(s.dataDir, summary); err != nil {
		log.Printf("Failed to write batch summary: %v", err)
	}
	if s.history != nil {
		if err := s.history.RecordBatch(summary); err != nil {
			log.Printf("Failed to archive batch summary: %v", err)
		}
	}

	st := models.NewServiceStatus(models.StatusCompleted,
		fmt.Sprintf("Successfully processed %d files", len(processed)))
	st.FilesProcessed = len(processed)
	st.ProcessedFiles = inputFileList(processed)
	st.AverageQualityScore = summary.AverageQualityScore
	s.report(ctx, st)

	if s.publisher != nil {
		if err := s.publisher.PublishDataProcessed(ctx, summary); err != nil {
			log.Printf("Failed to publish data processed event: %v", err)
		}
	}

	log.Printf("Stock data processing completed. Processed %d files", len(processed))
}

func (s *Service) report(ctx context.Context, st models.ServiceStatus) {
	if s.status == nil {
		return
	}
	if err := s.status.Update(ctx, st); err != nil {
		log.Printf("Failed to update status: %v", err)
	}
}

func (s *Service) archiveRun(item models.WorkItem, stats *models.ProcessingStats) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordRun(filepath.Base(item.Path), stats); err != nil {
		log.Printf("Failed to archive run for %s: %v", item.Path, err)
	}
}

// buildBatchSummary aggregates one cycle's successes, averaging quality
// scores to two decimal places.
func buildBatchSummary(processed []models.ProcessedFile) *models.BatchSummary {
	scores := make([]decimal.Decimal, len(processed))
	for i, f := range processed {
		scores[i] = decimal.NewFromFloat(f.Stats.DataQualityScore)
	}
	avg := decimal.Avg(scores[0], scores[1:]...).Round(2)

	return &models.BatchSummary{
		Timestamp:           time.Now().Format(time.RFC3339),
		TotalFilesProcessed: len(processed),
		Files:               processed,
		AverageQualityScore: avg.InexactFloat64(),
	}
}

func inputFileList(processed []models.ProcessedFile) string {
	names := make([]string, len(processed))
	for i, f := range processed {
		names[i] = f.InputFile
	}
	data, _ := json.Marshal(names)
	return string(data)
}
