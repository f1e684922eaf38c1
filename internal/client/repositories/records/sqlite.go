package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/dbx"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT document FROM local_entities
		 WHERE user_id = ? AND kind = ?
		 ORDER BY created_at, id`, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Collection(), err)
	}
	defer rows.Close()

	result := make([]models.Entity, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		var e models.Entity
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", kind, err)
	}

	return result, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string, kind models.Kind, id string) (*models.Entity, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM local_entities WHERE user_id = ? AND kind = ? AND id = ?`,
		userID, string(kind), id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get %s[%s]: %w", kind, id, err)
	}

	e := &models.Entity{}
	if err := json.Unmarshal(doc, e); err != nil {
		return nil, fmt.Errorf("failed to decode %s[%s]: %w", kind, id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, userID string, e *models.Entity) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO local_entities (user_id, kind, id, document, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, string(e.Kind), e.ID, doc, e.CreatedAt.UnixNano())
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("failed to insert %s[%s]: %w", e.Kind, e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, userID string, e *models.Entity) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO local_entities (user_id, kind, id, document, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, kind, id) DO UPDATE SET document = excluded.document`,
		userID, string(e.Kind), e.ID, doc, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert %s[%s]: %w", e.Kind, e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string, kind models.Kind, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM local_entities WHERE user_id = ? AND kind = ? AND id = ?`,
		userID, string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", kind, id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, userID string, kind models.Kind) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM local_entities WHERE user_id = ? AND kind = ?`, userID, string(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", kind.Collection(), err)
	}
	return result.RowsAffected()
}
