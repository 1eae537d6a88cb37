package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mediaupload/internal/dbx"
	"github.com/dmitrijs2005/mediaupload/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePending writes all rows in a single statement so the set is never
// partially present.
func (r *PostgresRepository) CreatePending(ctx context.Context, contentID string, components []string) error {
	if len(components) == 0 {
		return nil
	}

	values := make([]string, 0, len(components))
	args := make([]any, 0, len(components)+1)
	args = append(args, contentID)
	for i, c := range components {
		values = append(values, fmt.Sprintf("($1, $%d, 'pending')", i+2))
		args = append(args, c)
	}

	query := `INSERT INTO component_status (content_id, component, status) VALUES ` + strings.Join(values, ", ")
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert component status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != int64(len(components)) {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) ListByContentID(ctx context.Context, contentID string) ([]models.ComponentStatus, error) {
	query := `SELECT component, status FROM component_status WHERE content_id=$1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select component status: %w", err)
	}
	defer rows.Close()

	var result []models.ComponentStatus
	for rows.Next() {
		item := models.ComponentStatus{ContentID: contentID}
		var status string
		if err := rows.Scan(&item.Component, &status); err != nil {
			return nil, err
		}
		item.Status = models.UploadStatus(status)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
