package components

import (
	"context"

	"github.com/dmitrijs2005/mediaupload/internal/server/models"
)

// Repository persists component_status rows.
type Repository interface {
	// CreatePending inserts one pending row per component for contentID.
	CreatePending(ctx context.Context, contentID string, components []string) error
	ListByContentID(ctx context.Context, contentID string) ([]models.ComponentStatus, error)
}
