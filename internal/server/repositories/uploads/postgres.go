package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/dbx"
	"github.com/dmitrijs2005/mediaupload/internal/server/models"
)

// PostgresRepository implements upload storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `content_id, source_bucket, source_key, original_filename, file_size_bytes, mime_type,
	metadata_hash, processing_config, status, multipart_session_id, location, created_at, updated_at, completed_at`

// Create inserts a new content_inventory row. Timestamps are assigned by the
// database and written back into u.
func (r *PostgresRepository) Create(ctx context.Context, u *models.Upload) error {
	query := `
		INSERT INTO content_inventory (content_id, source_bucket, source_key, original_filename, file_size_bytes,
			mime_type, metadata_hash, processing_config, status, multipart_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	processingConfig := string(u.ProcessingConfig)
	if processingConfig == "" {
		processingConfig = "{}"
	}

	err := r.db.QueryRowContext(ctx, query,
		u.ContentID, u.SourceBucket, u.SourceKey, u.OriginalFilename, u.SizeBytes,
		u.MimeType, u.MetadataHash, processingConfig, string(u.Status), dbx.NullString(u.MultipartSessionID),
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

// Get returns the record for contentID.
func (r *PostgresRepository) Get(ctx context.Context, contentID string) (*models.Upload, error) {
	query := `SELECT ` + selectColumns + ` FROM content_inventory WHERE content_id=$1`
	return r.getOne(ctx, query, contentID)
}

// GetForUpdate returns the record for contentID and locks the row until the
// surrounding transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, contentID string) (*models.Upload, error) {
	query := `SELECT ` + selectColumns + ` FROM content_inventory WHERE content_id=$1 FOR UPDATE`
	return r.getOne(ctx, query, contentID)
}

// GetBySessionID returns the record owning the multipart session.
func (r *PostgresRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Upload, error) {
	query := `SELECT ` + selectColumns + ` FROM content_inventory WHERE multipart_session_id=$1`
	return r.getOne(ctx, query, sessionID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Upload, error) {
	var (
		u           models.Upload
		filename    sql.NullString
		config      []byte
		status      string
		sessionID   sql.NullString
		location    sql.NullString
		completedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ContentID, &u.SourceBucket, &u.SourceKey, &filename, &u.SizeBytes, &u.MimeType,
		&u.MetadataHash, &config, &status, &sessionID, &location, &u.CreatedAt, &u.UpdatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select upload: %w", err)
	}

	u.OriginalFilename = filename.String
	u.ProcessingConfig = config
	u.Status = models.UploadStatus(status)
	u.MultipartSessionID = sessionID.String
	u.Location = location.String
	if completedAt.Valid {
		t := completedAt.Time
		u.CompletedAt = &t
	}
	return &u, nil
}

// MarkUploaded moves the record to uploaded and stores its final location.
// Exactly one row must be affected.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, contentID, location string, completedAt time.Time) error {
	query := `
		UPDATE content_inventory
		SET status='uploaded', location=$2, completed_at=$3, updated_at=$3
		WHERE content_id=$1
	`
	result, err := r.db.ExecContext(ctx, query, contentID, location, completedAt)
	if err != nil {
		return fmt.Errorf("failed to mark uploaded: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
}
