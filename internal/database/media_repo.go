package database

import (
	"fmt"

	"github.com/verilens/verilens/internal/models"
)

type MediaRepository struct {
	db *DB
}

func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Insert(media *models.MediaFile) error {
	query := `
		INSERT INTO media_files (
			id, original_name, stored_name, content_type, size,
			claim, claim_provided, upload_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	claimProvided := 0
	if media.Claim.Provided {
		claimProvided = 1
	}

	_, err := r.db.conn.Exec(query,
		media.ID,
		media.OriginalName,
		media.StoredName,
		media.ContentType,
		media.Size,
		media.Claim.Text,
		claimProvided,
		media.UploadTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media file: %w", err)
	}
	return nil
}

func (r *MediaRepository) GetByID(id string) (*models.MediaFile, error) {
	query := `
		SELECT id, original_name, stored_name, content_type, size,
			   claim, claim_provided, upload_time
		FROM media_files
		WHERE id = ?`

	media := &models.MediaFile{}
	var claimProvided int

	err := r.db.conn.QueryRow(query, id).Scan(
		&media.ID,
		&media.OriginalName,
		&media.StoredName,
		&media.ContentType,
		&media.Size,
		&media.Claim.Text,
		&claimProvided,
		&media.UploadTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get media file: %w", err)
	}
	media.Claim.Provided = claimProvided != 0

	return media, nil
}

func (r *MediaRepository) List() ([]models.MediaFile, error) {
	query := `
		SELECT id, original_name, stored_name, content_type, size,
			   claim, claim_provided, upload_time
		FROM media_files
		ORDER BY upload_time DESC`

	rows, err := r.db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list media files: %w", err)
	}
	defer rows.Close()

	var files []models.MediaFile
	for rows.Next() {
		var media models.MediaFile
		var claimProvided int

		if err := rows.Scan(
			&media.ID,
			&media.OriginalName,
			&media.StoredName,
			&media.ContentType,
			&media.Size,
			&media.Claim.Text,
			&claimProvided,
			&media.UploadTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan media file: %w", err)
		}
		media.Claim.Provided = claimProvided != 0
		files = append(files, media)
	}

	return files, rows.Err()
}
