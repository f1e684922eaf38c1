package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SQLiteRepository) Create(ctx context.Context, a *models.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO local_accounts
		   (id, display_name, energy, total_energy_earned, completed_missions, redeemed_rewards, registered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DisplayName, a.Energy, a.TotalEnergyEarned, a.CompletedMissions, a.RedeemedRewards,
		a.RegisteredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("failed to create account[%s]: %w", a.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	a := &models.Account{}
	var registeredAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, energy, total_energy_earned, completed_missions, redeemed_rewards, registered_at
		 FROM local_accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.DisplayName, &a.Energy, &a.TotalEnergyEarned, &a.CompletedMissions, &a.RedeemedRewards, &registeredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get account[%s]: %w", id, err)
	}

	a.RegisteredAt, err = time.Parse(time.RFC3339Nano, registeredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse account[%s] registered_at: %w", id, err)
	}
	return a, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, a *models.Account) error {
	if err := a.Validate(); err != nil {
		return common.ErrInsufficientEnergy
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE local_accounts
		 SET display_name = ?, energy = ?, total_energy_earned = ?, completed_missions = ?, redeemed_rewards = ?
		 WHERE id = ?`,
		a.DisplayName, a.Energy, a.TotalEnergyEarned, a.CompletedMissions, a.RedeemedRewards, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update account[%s]: %w", a.ID, err)
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
