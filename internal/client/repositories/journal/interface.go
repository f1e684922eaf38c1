// Package journal stores encrypted journal pages in the client database.
// Deletion is soft: rows are flagged, not removed.
package journal

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/client/models"
)

type Repository interface {
	// Save inserts the record or replaces its sealed contents by id.
	Save(ctx context.Context, r *models.JournalRecord) error
	// ListOverviews returns live records for the user without their details.
	ListOverviews(ctx context.Context, userID string) ([]models.JournalRecord, error)
	// Get returns a live record; common.ErrorNotFound when absent or deleted.
	Get(ctx context.Context, userID, id string) (*models.JournalRecord, error)
	// Delete flags the record as deleted; common.ErrorNotFound when absent.
	Delete(ctx context.Context, userID, id string) error
}
