package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/cache"
	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/google/uuid"
)

// EntitySyncer produces a user's cached list of missions or rewards,
// seeding the default catalog the first time a collection is empty.
//
// Read paths (Sync, Get) never fail because the store is unreachable:
// they log and serve the cached list, or an empty one. Only invalid
// arguments are returned as errors there. Write paths (Save, Remove)
// surface store failures as common.ErrPersistence.
type EntitySyncer interface {
	Sync(ctx context.Context, userID string, kind models.Kind, forceReset bool) ([]models.Entity, error)
	Get(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error)
	Save(ctx context.Context, userID string, kind models.Kind, e models.Entity) (models.Entity, error)
	Remove(ctx context.Context, userID string, kind models.Kind, id string) error
	// Find returns common.ErrorNotFound when id is not in the collection.
	Find(ctx context.Context, userID string, kind models.Kind, id string) (models.Entity, error)
}

type Option func(*options)

type options struct {
	catalog *models.Catalog
	now     func() time.Time
	newID   func() string
}

func defaultOptions() options {
	return options{
		catalog: models.DefaultCatalog(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func WithCatalog(c *models.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

type entitySyncer struct {
	store client.RemoteStore
	cache cache.LocalCache
	log   logging.Logger
	options
}

func NewEntitySyncer(store client.RemoteStore, c cache.LocalCache, log logging.Logger, opts ...Option) EntitySyncer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &entitySyncer{
		store:   store,
		cache:   c,
		log:     log.With("module", "syncer"),
		options: o,
	}
}

func (s *entitySyncer) Sync(ctx context.Context, userID string, kind models.Kind, forceReset bool) ([]models.Entity, error) {
	if err := checkScope(userID, kind); err != nil {
		return nil, err
	}
	log := s.log.With("user_id", userID, "kind", kind.String())

	if forceReset {
		if err := s.cache.ClearEntities(ctx, userID, kind); err != nil {
			log.Warn(ctx, "cache clear failed", "error", err)
		}
		if err := s.clearRemote(ctx, userID, kind); err != nil {
			log.Warn(ctx, "reset failed, serving cached data", "error", err)
			return s.fallback(ctx, userID, kind), nil
		}
	}

	result, err := s.store.ListCollection(ctx, userID, kind)
	if err != nil {
		log.Warn(ctx, "list failed, serving cached data", "error", err)
		return s.fallback(ctx, userID, kind), nil
	}

	if len(result) == 0 {
		result, err = s.seed(ctx, userID, kind)
		if err != nil {
			log.Warn(ctx, "seeding failed, serving cached data", "error", err)
			return s.fallback(ctx, userID, kind), nil
		}
		log.Info(ctx, "seeded defaults", "count", len(result))
	}

	if err := s.cache.SetEntities(ctx, userID, kind, result); err != nil {
		log.Warn(ctx, "cache write failed", "error", err)
	}
	return models.CloneEntities(result), nil
}

// clearRemote deletes every stored entity of the collection.
func (s *entitySyncer) clearRemote(ctx context.Context, userID string, kind models.Kind) error {
	existing, err := s.store.ListCollection(ctx, userID, kind)
	if err != nil {
		return err
	}
	for _, e := range existing {
		err := s.store.DeleteEntity(ctx, userID, kind, e.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
	}
	return nil
}

// seed writes a fresh default set. A partial set is rolled back so the
// next sync seeds again instead of keeping half of the defaults.
func (s *entitySyncer) seed(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	defaults := s.catalog.Instantiate(kind, s.now(), s.newID)
	for i, e := range defaults {
		if err := s.store.PutEntity(ctx, userID, kind, e); err != nil {
			for _, written := range defaults[:i] {
				if derr := s.store.DeleteEntity(ctx, userID, kind, written.ID); derr != nil {
					s.log.Warn(ctx, "seed rollback failed", "user_id", userID, "id", written.ID, "error", derr)
				}
			}
			return nil, err
		}
	}
	return defaults, nil
}

func (s *entitySyncer) fallback(ctx context.Context, userID string, kind models.Kind) []models.Entity {
	cached, ok, err := s.cache.Entities(ctx, userID, kind)
	if err != nil {
		s.log.Warn(ctx, "cache read failed", "user_id", userID, "kind", kind.String(), "error", err)
		return []models.Entity{}
	}
	if !ok {
		return []models.Entity{}
	}
	return models.CloneEntities(cached)
}

func (s *entitySyncer) Get(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	if err := checkScope(userID, kind); err != nil {
		return nil, err
	}
	cached, ok, err := s.cache.Entities(ctx, userID, kind)
	if err != nil {
		s.log.Warn(ctx, "cache read failed", "user_id", userID, "kind", kind.String(), "error", err)
	}
	if err == nil && ok {
		return models.CloneEntities(cached), nil
	}
	return s.Sync(ctx, userID, kind, false)
}

func (s *entitySyncer) Save(ctx context.Context, userID string, kind models.Kind, e models.Entity) (models.Entity, error) {
	if err := checkScope(userID, kind); err != nil {
		return models.Entity{}, err
	}
	if e.Kind == "" {
		e.Kind = kind
	}
	if e.Kind != kind {
		return models.Entity{}, fmt.Errorf("%w: %s saved as %s", common.ErrValidation, e.Kind, kind)
	}

	if e.ID == "" {
		e.ID = s.newID()
		e.CreatedAt = s.now().UTC()
		e.Resolved = false
		e.ResolvedAt = nil
	} else {
		current, err := s.Get(ctx, userID, kind)
		if err != nil {
			return models.Entity{}, err
		}
		if i := models.IndexOf(current, e.ID); i >= 0 {
			prev := current[i]
			// resolution only changes through the ledger
			e.CreatedAt = prev.CreatedAt
			e.Resolved, e.ResolvedAt = prev.Resolved, prev.ResolvedAt
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.now().UTC()
		}
	}

	if err := e.Validate(); err != nil {
		return models.Entity{}, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	if err := s.store.PutEntity(ctx, userID, kind, e); err != nil {
		return models.Entity{}, persistence("save "+kind.String(), err)
	}

	saved := e.Clone()
	updateCached(ctx, s.cache, s.log, userID, kind, func(list []models.Entity) []models.Entity {
		if i := models.IndexOf(list, saved.ID); i >= 0 {
			list[i] = saved
			return list
		}
		return append(list, saved)
	})
	return e, nil
}

func (s *entitySyncer) Remove(ctx context.Context, userID string, kind models.Kind, id string) error {
	if err := checkScope(userID, kind); err != nil {
		return err
	}
	err := s.store.DeleteEntity(ctx, userID, kind, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return persistence("remove "+kind.String(), err)
	}

	updateCached(ctx, s.cache, s.log, userID, kind, func(list []models.Entity) []models.Entity {
		if i := models.IndexOf(list, id); i >= 0 {
			return append(list[:i], list[i+1:]...)
		}
		return list
	})
	return nil
}

func (s *entitySyncer) Find(ctx context.Context, userID string, kind models.Kind, id string) (models.Entity, error) {
	list, err := s.Get(ctx, userID, kind)
	if err != nil {
		return models.Entity{}, err
	}
	i := models.IndexOf(list, id)
	if i < 0 {
		return models.Entity{}, fmt.Errorf("%s %q: %w", kind, id, common.ErrorNotFound)
	}
	return list[i], nil
}

// updateCached rewrites the cached list with fn. Nothing is written when the
// collection is not cached yet, so the next Get still syncs and seeds.
func updateCached(ctx context.Context, c cache.LocalCache, log logging.Logger, userID string, kind models.Kind, fn func([]models.Entity) []models.Entity) {
	list, ok, err := c.Entities(ctx, userID, kind)
	if err != nil {
		log.Warn(ctx, "cache read failed", "user_id", userID, "kind", kind.String(), "error", err)
		return
	}
	if !ok {
		return
	}
	if err := c.SetEntities(ctx, userID, kind, fn(list)); err != nil {
		log.Warn(ctx, "cache write failed", "user_id", userID, "kind", kind.String(), "error", err)
	}
}
