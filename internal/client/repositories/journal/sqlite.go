package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/models"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, rec *models.JournalRecord) error {
	query := `INSERT INTO journal (id, user_id, overview, nonce_overview, details, nonce_details, created_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			overview = excluded.overview,
			nonce_overview = excluded.nonce_overview,
			details = excluded.details,
			nonce_details = excluded.nonce_details
		WHERE journal.user_id = excluded.user_id`

	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.UserID, rec.Overview, rec.NonceOverview,
		rec.Details, rec.NonceDetails, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListOverviews(ctx context.Context, userID string) ([]models.JournalRecord, error) {
	query := `SELECT id, overview, nonce_overview, created_at FROM journal
		WHERE user_id = ? AND deleted = 0
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select journal entries: %w", err)
	}
	defer rows.Close()

	result := make([]models.JournalRecord, 0)
	for rows.Next() {
		item := models.JournalRecord{UserID: userID}
		var created int64
		if err := rows.Scan(&item.ID, &item.Overview, &item.NonceOverview, &created); err != nil {
			return nil, err
		}
		item.CreatedAt = time.Unix(0, created).UTC()
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID, id string) (*models.JournalRecord, error) {
	query := `SELECT overview, nonce_overview, details, nonce_details, created_at FROM journal
		WHERE user_id = ? AND id = ? AND deleted = 0`

	rec := &models.JournalRecord{ID: id, UserID: userID}
	var created int64
	err := r.db.QueryRowContext(ctx, query, userID, id).
		Scan(&rec.Overview, &rec.NonceOverview, &rec.Details, &rec.NonceDetails, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE journal SET deleted = 1 WHERE user_id = ? AND id = ? AND deleted = 0`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}
	return nil
}
