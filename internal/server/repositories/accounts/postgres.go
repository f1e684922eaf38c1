package accounts

import (
	"context"
	"database/sql"
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

const selectAccount = `SELECT user_id, display_name, energy, total_energy_earned, completed_missions, redeemed_rewards, registered_at
		 FROM accounts
		 WHERE user_id = $1`

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	query :=
		`INSERT INTO accounts (user_id, display_name, energy, total_energy_earned, completed_missions, redeemed_rewards, registered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.DisplayName, a.Energy, a.TotalEnergyEarned, a.CompletedMissions, a.RedeemedRewards, a.RegisteredAt.UTC())
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Account, error) {
	return r.get(ctx, selectAccount, userID)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	return r.get(ctx, selectAccount+"\n\t\t FOR UPDATE", userID)
}

func (r *PostgresRepository) get(ctx context.Context, query, userID string) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&a.ID, &a.DisplayName, &a.Energy, &a.TotalEnergyEarned, &a.CompletedMissions, &a.RedeemedRewards, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.RegisteredAt = a.RegisteredAt.UTC()
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) error {
	if err := a.Validate(); err != nil {
		return common.ErrInsufficientEnergy
	}

	query :=
		`UPDATE accounts
		 SET display_name = $2, energy = $3, total_energy_earned = $4, completed_missions = $5, redeemed_rewards = $6
		 WHERE user_id = $1
		 `
	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.DisplayName, a.Energy, a.TotalEnergyEarned, a.CompletedMissions, a.RedeemedRewards)
	if err != nil {
		if dbx.IsCheckViolation(err) {
			return common.ErrInsufficientEnergy
		}
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
