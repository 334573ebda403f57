package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessingRun is one archived per-file processing record.
type ProcessingRun struct {
	ID           int              `json:"id"`
	InputFile    string           `json:"input_file"`
	FileType     string           `json:"file_type"`
	OriginalRows int              `json:"original_rows"`
	FinalRows    int              `json:"final_rows"`
	QualityScore decimal.Decimal  `json:"quality_score"`
	Steps        []ProcessingStep `json:"steps"`
	Error        string           `json:"error,omitempty"`
	ProcessedAt  time.Time        `json:"processed_at"`
}

// BatchRecord is one archived orchestration-cycle summary.
type BatchRecord struct {
	ID                  int             `json:"id"`
	FilesProcessed      int             `json:"files_processed"`
	AverageQualityScore decimal.Decimal `json:"average_quality_score"`
	Summary             *BatchSummary   `json:"summary"`
	CreatedAt           time.Time       `json:"created_at"`
}
