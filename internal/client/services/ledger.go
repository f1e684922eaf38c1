package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/cache"
	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// LedgerService applies resolve transitions to one entity and the owning
// account. Resolving is idempotent: a second call on a resolved entity
// returns the current account and changes nothing. The store decides
// whether the entity is still pending, so a stale cached copy never
// credits or charges the account twice.
//
// Mutations for one user are serialized within the process. The entity is
// written before the account; if the account write fails the entity is put
// back to pending (best effort) and common.ErrPersistence is returned.
type LedgerService interface {
	CompleteMission(ctx context.Context, userID, missionID string) (*models.Account, error)
	RedeemReward(ctx context.Context, userID, rewardID string) (*models.Account, error)
	// AdjustEnergy adds delta to the balance. Positive deltas also count
	// towards TotalEnergyEarned; negative ones touch the balance only.
	AdjustEnergy(ctx context.Context, userID string, delta int64) (*models.Account, error)
	// Account reads the remote account, falling back to the cached snapshot.
	Account(ctx context.Context, userID string) (*models.Account, error)
}

type ledgerService struct {
	syncer EntitySyncer
	store  client.RemoteStore
	cache  cache.LocalCache
	log    logging.Logger
	now    func() time.Time
	locks  userLocks
}

func NewLedgerService(syncer EntitySyncer, store client.RemoteStore, c cache.LocalCache, log logging.Logger, opts ...Option) LedgerService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ledgerService{
		syncer: syncer,
		store:  store,
		cache:  c,
		log:    log.With("module", "ledger"),
		now:    o.now,
	}
}

func (s *ledgerService) CompleteMission(ctx context.Context, userID, missionID string) (*models.Account, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	defer s.locks.lock(userID)()

	m, err := s.syncer.Find(ctx, userID, models.KindMission, missionID)
	if err != nil {
		return nil, err
	}
	if m.Resolved {
		return s.Account(ctx, userID)
	}

	acct, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := acct.Clone()
	next.Energy += m.EnergyValue
	next.TotalEnergyEarned += m.EnergyValue
	next.CompletedMissions++

	return s.resolve(ctx, userID, m, acct, next)
}

func (s *ledgerService) RedeemReward(ctx context.Context, userID, rewardID string) (*models.Account, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	defer s.locks.lock(userID)()

	r, err := s.syncer.Find(ctx, userID, models.KindReward, rewardID)
	if err != nil {
		return nil, err
	}
	if r.Resolved {
		return s.Account(ctx, userID)
	}

	acct, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct.Energy < r.EnergyValue {
		return nil, fmt.Errorf("%w: need %d, have %d", common.ErrInsufficientEnergy, r.EnergyValue, acct.Energy)
	}
	next := acct.Clone()
	next.Energy -= r.EnergyValue
	next.RedeemedRewards++

	return s.resolve(ctx, userID, r, acct, next)
}

func (s *ledgerService) AdjustEnergy(ctx context.Context, userID string, delta int64) (*models.Account, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	defer s.locks.lock(userID)()

	acct, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return acct, nil
	}

	if delta == math.MinInt64 || (delta > 0 && (acct.Energy > math.MaxInt64-delta || acct.TotalEnergyEarned > math.MaxInt64-delta)) {
		return nil, fmt.Errorf("%w: energy delta %d out of range", common.ErrValidation, delta)
	}

	next := acct.Clone()
	if delta > 0 {
		next.Energy += delta
		next.TotalEnergyEarned += delta
	} else {
		if -delta > acct.Energy {
			return nil, fmt.Errorf("%w: need %d, have %d", common.ErrInsufficientEnergy, -delta, acct.Energy)
		}
		next.Energy += delta
	}

	updated, err := s.store.UpdateAccount(ctx, userID, models.Diff(acct, next))
	if err != nil {
		return nil, persistence("adjust energy", err)
	}
	return s.remember(ctx, updated, next), nil
}

func (s *ledgerService) Account(ctx context.Context, userID string) (*models.Account, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	a, err := s.store.GetAccount(ctx, userID)
	if err == nil {
		return s.remember(ctx, a, a), nil
	}
	s.log.Warn(ctx, "account read failed, trying cache", "user_id", userID, "error", err)

	cached, ok, cerr := s.cache.Account(ctx, userID)
	if cerr != nil {
		s.log.Warn(ctx, "cache read failed", "user_id", userID, "error", cerr)
	}
	if cerr == nil && ok {
		return cached, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("account %q: %w", userID, common.ErrorNotFound)
	}
	return nil, persistence("read account", err)
}

// load reads the account a mutation starts from. Unlike Account it never
// uses the cache: a stale balance must not be written back.
func (s *ledgerService) load(ctx context.Context, userID string) (*models.Account, error) {
	a, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, persistence("read account", err)
	}
	return a, nil
}

func (s *ledgerService) resolve(ctx context.Context, userID string, e models.Entity, acct, next *models.Account) (*models.Account, error) {
	at := s.now().UTC()
	action := e.Kind.ResolvedWord()

	err := s.store.UpdateEntity(ctx, userID, e.Kind, e.ID, models.ResolvePatch(at))
	if errors.Is(err, common.ErrAlreadyResolved) {
		// another session got there first; our cached copy was stale
		s.log.Info(ctx, e.Kind.String()+" already "+action, "user_id", userID, "id", e.ID)
		if _, serr := s.syncer.Sync(ctx, userID, e.Kind, false); serr != nil {
			s.log.Warn(ctx, "refresh after stale resolve failed", "user_id", userID, "error", serr)
		}
		return s.Account(ctx, userID)
	}
	if err != nil {
		return nil, persistence("mark "+e.Kind.String()+" "+action, err)
	}

	updated, err := s.store.UpdateAccount(ctx, userID, models.Diff(acct, next))
	if err != nil {
		if cerr := s.store.UpdateEntity(ctx, userID, e.Kind, e.ID, models.UnresolvePatch()); cerr != nil {
			s.log.Error(ctx, "compensation failed, entity left resolved",
				"user_id", userID, "kind", e.Kind.String(), "id", e.ID, "error", cerr)
		}
		return nil, persistence("update account", err)
	}

	resolved := e.Clone()
	resolved.Resolve(at)
	updateCached(ctx, s.cache, s.log, userID, e.Kind, func(list []models.Entity) []models.Entity {
		if i := models.IndexOf(list, resolved.ID); i >= 0 {
			list[i] = resolved
		}
		return list
	})

	s.log.Info(ctx, e.Kind.String()+" "+action, "user_id", userID, "id", e.ID, "energy", next.Energy)
	return s.remember(ctx, updated, next), nil
}

// remember caches the account returned by the store, or want when the
// store returned none.
func (s *ledgerService) remember(ctx context.Context, got, want *models.Account) *models.Account {
	a := got
	if a == nil {
		a = want
	}
	if err := s.cache.SetAccount(ctx, a); err != nil {
		s.log.Warn(ctx, "cache write failed", "user_id", a.ID, "error", err)
	}
	return a.Clone()
}

// userLocks hands out one mutex per user id and forgets it once no caller
// holds or waits for it.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) lock(userID string) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*userLock)
	}
	ul, ok := l.m[userID]
	if !ok {
		ul = &userLock{}
		l.m[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}
