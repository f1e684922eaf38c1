package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/timex"
)

// Stats summarizes a user's collections. Energy figures are derived from
// the entities, so they can differ from the account after manual
// adjustments.
type Stats struct {
	Account           *models.Account
	Missions          int
	CompletedMissions int
	Rewards           int
	RedeemedRewards   int
	EnergyEarned      int64
	EnergySpent       int64
}

type StatsService interface {
	Stats(ctx context.Context, userID string) (*Stats, error)
	// Streak counts consecutive days, ending on now's day, with at least one
	// completed mission. Days are taken in now's location.
	Streak(ctx context.Context, userID string, now time.Time) (int, error)
}

type statsService struct {
	syncer EntitySyncer
	ledger LedgerService
}

func NewStatsService(syncer EntitySyncer, ledger LedgerService) StatsService {
	return &statsService{syncer: syncer, ledger: ledger}
}

func (s *statsService) Stats(ctx context.Context, userID string) (*Stats, error) {
	missions, err := s.syncer.Get(ctx, userID, models.KindMission)
	if err != nil {
		return nil, err
	}
	rewards, err := s.syncer.Get(ctx, userID, models.KindReward)
	if err != nil {
		return nil, err
	}

	st := &Stats{Missions: len(missions), Rewards: len(rewards)}
	for _, m := range missions {
		if m.Resolved {
			st.CompletedMissions++
			st.EnergyEarned += m.EnergyValue
		}
	}
	for _, r := range rewards {
		if r.Resolved {
			st.RedeemedRewards++
			st.EnergySpent += r.EnergyValue
		}
	}

	st.Account, err = s.ledger.Account(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return st, nil
}

func (s *statsService) Streak(ctx context.Context, userID string, now time.Time) (int, error) {
	missions, err := s.syncer.Get(ctx, userID, models.KindMission)
	if err != nil {
		return 0, err
	}
	return streak(missions, now), nil
}

func streak(missions []models.Entity, now time.Time) int {
	const layout = "2006-01-02"
	days := make(map[string]struct{})
	for _, m := range missions {
		if m.Resolved && m.ResolvedAt != nil {
			days[m.ResolvedAt.In(now.Location()).Format(layout)] = struct{}{}
		}
	}

	n := 0
	for day := timex.StartOfDay(now); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format(layout)]; !ok {
			return n
		}
		n++
	}
}
