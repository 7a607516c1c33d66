package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verilens/verilens/internal/models"
)

// StoredReport is a persisted report together with the media file it belongs to.
type StoredReport struct {
	MediaID   string
	CreatedAt time.Time
	Report    models.ForensicReport
}

type ReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Insert(ctx context.Context, mediaID string, rep models.ForensicReport) error {
	manipulationType, err := json.Marshal(rep.ManipulationType)
	if err != nil {
		return fmt.Errorf("failed to marshal manipulation types: %w", err)
	}
	ensembleData, err := json.Marshal(rep.EnsembleData)
	if err != nil {
		return fmt.Errorf("failed to marshal ensemble data: %w", err)
	}
	regions, err := json.Marshal(rep.SuspiciousRegions)
	if err != nil {
		return fmt.Errorf("failed to marshal suspicious regions: %w", err)
	}
	metadata, err := json.Marshal(rep.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO reports (
			id, media_id, file_name, file_type, timestamp, file_hash,
			authenticity_score, is_manipulated, manipulation_type,
			ensemble_data, semantic_mismatch, semantic_text, reasoning,
			suspicious_regions, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.conn.ExecContext(ctx, query,
		rep.ID,
		mediaID,
		rep.FileName,
		string(rep.FileType),
		rep.Timestamp,
		rep.FileHash,
		rep.AuthenticityScore,
		boolToInt(rep.IsManipulated),
		string(manipulationType),
		string(ensembleData),
		boolToInt(rep.SemanticMismatchDetected),
		rep.SemanticAnalysisText,
		rep.Reasoning,
		string(regions),
		string(metadata),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*StoredReport, error) {
	query := selectReportColumns + ` WHERE id = ?`

	row := r.db.conn.QueryRowContext(ctx, query, id)
	stored, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return stored, nil
}

func (r *ReportRepository) List(ctx context.Context) ([]StoredReport, error) {
	query := selectReportColumns + ` ORDER BY created_at DESC`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []StoredReport
	for rows.Next() {
		stored, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *stored)
	}

	return reports, rows.Err()
}

func (r *ReportRepository) CountByMediaID(ctx context.Context, mediaID string) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE media_id = ?`, mediaID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

const selectReportColumns = `
	SELECT id, media_id, file_name, file_type, timestamp, file_hash,
		   authenticity_score, is_manipulated, manipulation_type,
		   ensemble_data, semantic_mismatch, semantic_text, reasoning,
		   suspicious_regions, metadata, created_at
	FROM reports`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*StoredReport, error) {
	var (
		stored           StoredReport
		fileType         string
		isManipulated    int
		semanticMismatch int
		manipulationType string
		ensembleData     string
		regions          string
		metadata         string
	)

	err := row.Scan(
		&stored.Report.ID,
		&stored.MediaID,
		&stored.Report.FileName,
		&fileType,
		&stored.Report.Timestamp,
		&stored.Report.FileHash,
		&stored.Report.AuthenticityScore,
		&isManipulated,
		&manipulationType,
		&ensembleData,
		&semanticMismatch,
		&stored.Report.SemanticAnalysisText,
		&stored.Report.Reasoning,
		&regions,
		&metadata,
		&stored.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	stored.Report.FileType = models.MediaKind(fileType)
	stored.Report.IsManipulated = isManipulated != 0
	stored.Report.SemanticMismatchDetected = semanticMismatch != 0

	if err := json.Unmarshal([]byte(manipulationType), &stored.Report.ManipulationType); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manipulation types: %w", err)
	}
	if err := json.Unmarshal([]byte(ensembleData), &stored.Report.EnsembleData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ensemble data: %w", err)
	}
	if err := json.Unmarshal([]byte(regions), &stored.Report.SuspiciousRegions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suspicious regions: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &stored.Report.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &stored, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
