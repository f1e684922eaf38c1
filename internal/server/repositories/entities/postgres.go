package entities

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	query :=
		`SELECT document FROM entities
		 WHERE user_id = $1 AND kind = $2
		 ORDER BY created_at, id
		 `
	rows, err := r.db.QueryContext(ctx, query, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Entity, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		var e models.Entity
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID string, kind models.Kind, id string) (*models.Entity, error) {
	query :=
		`SELECT document FROM entities
		 WHERE user_id = $1 AND kind = $2 AND id = $3
		 FOR UPDATE
		 `
	var doc []byte
	if err := r.db.QueryRowContext(ctx, query, userID, string(kind), id).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	e := &models.Entity{}
	if err := json.Unmarshal(doc, e); err != nil {
		return nil, fmt.Errorf("decode %s[%s]: %w", kind, id, err)
	}
	return e, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID string, e *models.Entity) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s[%s]: %w", e.Kind, e.ID, err)
	}

	query :=
		`INSERT INTO entities (user_id, kind, id, document, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, kind, id)
		 DO UPDATE SET document = EXCLUDED.document, updated_at = now()
		 `
	if _, err := r.db.ExecContext(ctx, query, userID, string(e.Kind), e.ID, doc, e.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, kind models.Kind, id string) error {
	query :=
		`DELETE FROM entities
		 WHERE user_id = $1 AND kind = $2 AND id = $3
		 `
	res, err := r.db.ExecContext(ctx, query, userID, string(kind), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
