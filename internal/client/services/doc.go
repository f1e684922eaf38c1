// Package services contains the client application services: the entity
// syncer and the ledger that together keep a user's missions, rewards and
// energy balance consistent with the active RemoteStore, plus the
// authentication, journal, statistics and backup services built on them.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	return nil
}

func checkScope(userID string, kind models.Kind) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", common.ErrValidation, kind)
	}
	return nil
}

// persistence wraps a store failure. Validation and not-found errors
// pass through so callers can still tell them apart.
func persistence(action string, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrInsufficientEnergy):
		return fmt.Errorf("%s: %w", action, err)
	}
	return fmt.Errorf("%s: %w: %w", action, common.ErrPersistence, err)
}
