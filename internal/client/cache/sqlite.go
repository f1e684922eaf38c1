package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/dbx"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// SQLite keeps the cache in the client database so it survives restarts.
// Each key holds one JSON document; a write is one upsert.
type SQLite struct {
	db  dbx.DBTX
	now func() time.Time
}

var _ LocalCache = (*SQLite)(nil)

func NewSQLite(db dbx.DBTX) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

func (c *SQLite) get(ctx context.Context, key string, v any) (bool, error) {
	var doc []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache[%s]: %w", key, err)
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return false, fmt.Errorf("failed to decode cache[%s]: %w", key, err)
	}
	return true, nil
}

func (c *SQLite) set(ctx context.Context, key string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache[%s]: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, doc, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to write cache[%s]: %w", key, err)
	}
	return nil
}

func (c *SQLite) Entities(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, bool, error) {
	var es []models.Entity
	ok, err := c.get(ctx, entitiesKey(userID, kind), &es)
	if err != nil || !ok {
		return nil, false, err
	}
	if es == nil {
		es = []models.Entity{}
	}
	return es, true, nil
}

func (c *SQLite) SetEntities(ctx context.Context, userID string, kind models.Kind, es []models.Entity) error {
	if es == nil {
		es = []models.Entity{}
	}
	return c.set(ctx, entitiesKey(userID, kind), es)
}

func (c *SQLite) ClearEntities(ctx context.Context, userID string, kind models.Kind) error {
	key := entitiesKey(userID, kind)
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear cache[%s]: %w", key, err)
	}
	return nil
}

func (c *SQLite) Account(ctx context.Context, userID string) (*models.Account, bool, error) {
	a := &models.Account{}
	ok, err := c.get(ctx, accountKey(userID), a)
	if err != nil || !ok {
		return nil, false, err
	}
	return a, true, nil
}

func (c *SQLite) SetAccount(ctx context.Context, a *models.Account) error {
	return c.set(ctx, accountKey(a.ID), a)
}

func (c *SQLite) Purge(ctx context.Context, userID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ? OR key = ? OR key = ?`,
		accountKey(userID), entitiesKey(userID, models.KindMission), entitiesKey(userID, models.KindReward))
	if err != nil {
		return fmt.Errorf("failed to purge cache for %s: %w", userID, err)
	}
	return nil
}
