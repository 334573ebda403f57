package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stockpipe/data-clean-service/internal/dataset"
	"github.com/stockpipe/data-clean-service/internal/models"
)

// BatchSummaryFile is the cross-batch summary artifact name, overwritten on
// every cycle that produced at least one success.
const BatchSummaryFile = "stock_processing_summary.json"

// OutputPaths derives the artifact paths for a work item. Names depend only
// on the item's kind and token so re-running discovery always re-derives the
// same names.
func OutputPaths(dir, kind, token string) (csvPath, summaryPath string) {
	csvPath = filepath.Join(dir, fmt.Sprintf("processed_%s_%s.csv", kind, token))
	summaryPath = filepath.Join(dir, fmt.Sprintf("processing_summary_%s_%s.json", kind, token))
	return csvPath, summaryPath
}

// emitProcessed writes the enriched dataset and its processing summary.
func emitProcessed(dir string, item models.WorkItem, ds *models.Dataset, stats *models.ProcessingStats) (string, error) {
	csvPath, summaryPath := OutputPaths(dir, item.Kind, item.Token)

	if err := dataset.WriteFile(csvPath, ds); err != nil {
		return "", err
	}
	if err := writeJSON(summaryPath, stats); err != nil {
		return "", err
	}
	return csvPath, nil
}

// emitBatchSummary writes the cross-batch summary artifact.
func emitBatchSummary(dir string, summary *models.BatchSummary) error {
	return writeJSON(filepath.Join(dir, BatchSummaryFile), summary)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
