package models

import "time"

// Processing step name constants
const (
	StepRemoveDuplicates    = "remove_duplicates"
	StepHandleMissingValues = "handle_missing_values"
	StepTechnicalIndicators = "technical_indicators"
	StepMarketAnalysis      = "market_analysis"
)

// ProcessingStep is one applied pipeline step with its effect-specific fields.
type ProcessingStep struct {
	Step            string   `json:"step"`
	RowsRemoved     int      `json:"rows_removed,omitempty"`
	MissingBefore   *int     `json:"missing_before,omitempty"`
	MissingAfter    *int     `json:"missing_after,omitempty"`
	IndicatorsAdded []string `json:"indicators_added,omitempty"`
	AnalysisAdded   []string `json:"analysis_added,omitempty"`
}

// ProcessingStats records what happened to a single input file. It is built
// up during processing and immutable once the file finishes.
type ProcessingStats struct {
	OriginalRows     int              `json:"original_rows"`
	FileType         string           `json:"file_type"`
	Steps            []ProcessingStep `json:"steps"`
	FinalRows        int              `json:"final_rows"`
	DataQualityScore float64          `json:"data_quality_score"`
	Error            string           `json:"error,omitempty"`
}

// ProcessedFile pairs an input file with its stats in a batch summary.
type ProcessedFile struct {
	InputFile string           `json:"input_file"`
	FileType  string           `json:"file_type"`
	Stats     *ProcessingStats `json:"stats"`
}

// BatchSummary aggregates one orchestration cycle.
type BatchSummary struct {
	Timestamp           string          `json:"timestamp"`
	TotalFilesProcessed int             `json:"total_files_processed"`
	Files               []ProcessedFile `json:"files"`
	AverageQualityScore float64         `json:"average_quality_score"`
}

// Service status constants
const (
	StatusStarted    = "started"
	StatusProcessing = "processing"
	StatusIdle       = "idle"
	StatusCompleted  = "completed"
	StatusError      = "error"
	StatusStopped    = "stopped"
)

// ServiceStatus is the transient state record mirrored to the status store.
// Last write wins; extra fields are flattened into the store entry.
type ServiceStatus struct {
	Status              string  `json:"status"`
	Timestamp           string  `json:"timestamp"`
	Message             string  `json:"message"`
	Error               string  `json:"error,omitempty"`
	FilesProcessed      int     `json:"files_processed,omitempty"`
	ProcessedFiles      string  `json:"processed_files,omitempty"`
	AverageQualityScore float64 `json:"average_quality_score,omitempty"`
}

// NewServiceStatus builds a status record stamped with the current time.
func NewServiceStatus(status, message string) ServiceStatus {
	return ServiceStatus{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   message,
	}
}
