package uploads

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/server/models"
)

// Repository persists content_inventory rows. Lookups of an unknown id fail
// with common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, u *models.Upload) error
	Get(ctx context.Context, contentID string) (*models.Upload, error)
	// GetForUpdate is Get with a row lock; it must run inside a transaction.
	GetForUpdate(ctx context.Context, contentID string) (*models.Upload, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Upload, error)
	MarkUploaded(ctx context.Context, contentID, location string, completedAt time.Time) error
}
