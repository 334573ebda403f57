// Package pipeline sequences the cleaning stages over discovered work items
// and coordinates with the status store and event bus.
package pipeline

import (
	"log"

	"github.com/stockpipe/data-clean-service/internal/clean"
	"github.com/stockpipe/data-clean-service/internal/dataset"
	"github.com/stockpipe/data-clean-service/internal/indicator"
	"github.com/stockpipe/data-clean-service/internal/models"
)

// Processor runs the cleaning stages over a single input file and emits its
// artifacts. A file is processed to completion or not at all.
type Processor struct {
	dataDir string
}

// NewProcessor creates a Processor emitting into dataDir.
func NewProcessor(dataDir string) *Processor {
	return &Processor{dataDir: dataDir}
}

// ProcessFile cleans and enriches one work item. Any failure is returned to
// the caller for recording; nothing is emitted on failure.
func (p *Processor) ProcessFile(item models.WorkItem) (*models.ProcessingStats, error) {
	log.Printf("Processing file: %s", item.Path)

	ds, err := dataset.ReadFile(item.Path, item.Kind)
	if err != nil {
		return nil, err
	}

	stats := &models.ProcessingStats{
		OriginalRows: ds.Rows(),
		FileType:     item.Kind,
		Steps:        []models.ProcessingStep{},
	}

	clean.Deduplicate(ds, stats)
	clean.ImputeMissing(ds, stats)

	if indicator.Compute(ds) {
		stats.Steps = append(stats.Steps, models.ProcessingStep{
			Step:            models.StepTechnicalIndicators,
			IndicatorsAdded: append([]string{}, indicator.Families...),
		})
	}

	clean.AnalyzeQuotes(ds, stats)

	stats.FinalRows = ds.Rows()
	stats.DataQualityScore = clean.QualityScore(ds)

	outPath, err := emitProcessed(p.dataDir, item, ds, stats)
	if err != nil {
		return nil, err
	}

	log.Printf("Processed data saved to: %s", outPath)
	log.Printf("Data quality score: %.2f%%", stats.DataQualityScore)
	return stats, nil
}
