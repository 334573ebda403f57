package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockpipe/data-clean-service/internal/models"
)

// CreateProcessingRun inserts an archived per-file processing record
func (db *DB) CreateProcessingRun(run *models.ProcessingRun) error {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}
	if run.Steps == nil {
		steps = []byte("[]")
	}

	query := `
		INSERT INTO processing_runs (input_file, file_type, original_rows, final_rows, quality_score, steps, error, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	if run.ProcessedAt.IsZero() {
		run.ProcessedAt = time.Now()
	}
	err = db.conn.QueryRow(query,
		run.InputFile, run.FileType, run.OriginalRows, run.FinalRows,
		run.QualityScore, steps, run.Error, run.ProcessedAt,
	).Scan(&run.ID)

	if err != nil {
		return fmt.Errorf("failed to create processing run: %w", err)
	}
	return nil
}

// GetRecentRuns retrieves the most recent processing runs
func (db *DB) GetRecentRuns(limit int) ([]*models.ProcessingRun, error) {
	query := `
		SELECT id, input_file, file_type, original_rows, final_rows, quality_score, steps, error, processed_at
		FROM processing_runs
		ORDER BY processed_at DESC, id DESC
		LIMIT $1
	`
	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get processing runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetRunsByFileType retrieves recent runs for one source kind
func (db *DB) GetRunsByFileType(fileType string, limit int) ([]*models.ProcessingRun, error) {
	query := `
		SELECT id, input_file, file_type, original_rows, final_rows, quality_score, steps, error, processed_at
		FROM processing_runs
		WHERE file_type = $1
		ORDER BY processed_at DESC, id DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, fileType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get processing runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// CreateBatchRecord inserts an archived batch summary
func (db *DB) CreateBatchRecord(record *models.BatchRecord) error {
	summary, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO batch_summaries (files_processed, average_quality_score, summary, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	err = db.conn.QueryRow(query,
		record.FilesProcessed, record.AverageQualityScore, summary, record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		return fmt.Errorf("failed to create batch record: %w", err)
	}
	return nil
}

// GetLatestBatchRecord retrieves the most recent batch summary
func (db *DB) GetLatestBatchRecord() (*models.BatchRecord, error) {
	query := `
		SELECT id, files_processed, average_quality_score, summary, created_at
		FROM batch_summaries
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	var record models.BatchRecord
	var summary []byte
	err := db.conn.QueryRow(query).Scan(
		&record.ID, &record.FilesProcessed, &record.AverageQualityScore, &summary, &record.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no batch summaries recorded")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch record: %w", err)
	}

	if err := json.Unmarshal(summary, &record.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &record, nil
}

// RecordRun archives one file's processing stats. Implements the
// orchestrator's HistoryArchive interface.
func (db *DB) RecordRun(inputFile string, stats *models.ProcessingStats) error {
	run := &models.ProcessingRun{
		InputFile:    inputFile,
		FileType:     stats.FileType,
		OriginalRows: stats.OriginalRows,
		FinalRows:    stats.FinalRows,
		QualityScore: decimalFromScore(stats.DataQualityScore),
		Steps:        stats.Steps,
		Error:        stats.Error,
	}
	return db.CreateProcessingRun(run)
}

// RecordBatch archives one cycle's batch summary.
func (db *DB) RecordBatch(summary *models.BatchSummary) error {
	record := &models.BatchRecord{
		FilesProcessed:      summary.TotalFilesProcessed,
		AverageQualityScore: decimalFromScore(summary.AverageQualityScore),
		Summary:             summary,
	}
	return db.CreateBatchRecord(record)
}

func decimalFromScore(score float64) decimal.Decimal {
	return decimal.NewFromFloat(score).Round(2)
}

func scanRuns(rows *sql.Rows) ([]*models.ProcessingRun, error) {
	var runs []*models.ProcessingRun
	for rows.Next() {
		var run models.ProcessingRun
		var steps []byte
		err := rows.Scan(
			&run.ID, &run.InputFile, &run.FileType, &run.OriginalRows, &run.FinalRows,
			&run.QualityScore, &steps, &run.Error, &run.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processing run: %w", err)
		}
		if err := json.Unmarshal(steps, &run.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, nil
}
