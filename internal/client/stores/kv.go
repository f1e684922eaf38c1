package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// errRevisionMismatch reports a lost compare-and-set race.
var errRevisionMismatch = errors.New("revision mismatch")

const casAttempts = 5

// Bucket is the part of a JetStream key-value bucket KV needs.
// Get returns common.ErrorNotFound for missing or deleted keys and
// Update returns errRevisionMismatch when the revision is stale.
type Bucket interface {
	Get(ctx context.Context, key string) ([]byte, uint64, error)
	Put(ctx context.Context, key string, value []byte) error
	Create(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, value []byte, revision uint64) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// KV stores entity documents under "<user>.<id>" in one bucket per kind
// and accounts under "<user>" in a separate bucket.
type KV struct {
	entities map[models.Kind]Bucket
	accounts Bucket
}

var (
	_ client.RemoteStore = (*KV)(nil)
	_ AccountCreator     = (*KV)(nil)
)

func NewKV(missions, rewards, accounts Bucket) *KV {
	return &KV{
		entities: map[models.Kind]Bucket{
			models.KindMission: missions,
			models.KindReward:  rewards,
		},
		accounts: accounts,
	}
}

// OpenKV binds to (creating if needed) the "<prefix>_missions",
// "<prefix>_rewards" and "<prefix>_accounts" buckets.
func OpenKV(ctx context.Context, js jetstream.JetStream, prefix string) (*KV, error) {
	open := func(name string) (Bucket, error) {
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      prefix + "_" + name,
			Description: "tokenquest " + name,
			History:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("bucket %s: %w", name, err)
		}
		return &jsBucket{kv: kv}, nil
	}

	missions, err := open(models.KindMission.Collection())
	if err != nil {
		return nil, err
	}
	rewards, err := open(models.KindReward.Collection())
	if err != nil {
		return nil, err
	}
	accounts, err := open("accounts")
	if err != nil {
		return nil, err
	}
	return NewKV(missions, rewards, accounts), nil
}

// ConnectKV dials NATS at url and opens the buckets. The returned func
// drains the connection.
func ConnectKV(ctx context.Context, url, prefix string) (*KV, func(), error) {
	nc, err := nats.Connect(url, nats.Name("tokenquest-client"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: nats connect: %w", client.ErrUnavailable, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	kv, err := OpenKV(ctx, js, prefix)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return kv, func() { _ = nc.Drain() }, nil
}

func entityKey(userID, id string) string {
	return userID + "." + id
}

func (s *KV) bucket(kind models.Kind) (Bucket, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.entities[kind], nil
}

func (s *KV) ListCollection(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	b, err := s.bucket(kind)
	if err != nil {
		return nil, err
	}
	keys, err := b.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Collection(), err)
	}

	prefix := userID + "."
	out := make([]models.Entity, 0)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		value, _, err := b.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			// deleted between Keys and Get
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s[%s]: %w", kind, key, err)
		}
		var e models.Entity
		if err := json.Unmarshal(value, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s[%s]: %w", kind, key, err)
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *KV) PutEntity(ctx context.Context, userID string, kind models.Kind, e models.Entity) error {
	b, err := s.bucket(kind)
	if err != nil {
		return err
	}
	if err := normalize(kind, &e); err != nil {
		return err
	}
	key := entityKey(userID, e.ID)
	for attempt := 0; attempt < casAttempts; attempt++ {
		current, rev, err := b.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			value, err := json.Marshal(e)
			if err != nil {
				return err
			}
			err = b.Create(ctx, key, value)
			if errors.Is(err, common.ErrorAlreadyExists) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to put %s[%s]: %w", kind, e.ID, err)
			}
			return nil
		}
		if err != nil {
			return err
		}

		var stored models.Entity
		if err := json.Unmarshal(current, &stored); err != nil {
			return fmt.Errorf("failed to decode %s[%s]: %w", kind, e.ID, err)
		}
		keepResolution(&e, stored)
		value, err := json.Marshal(e)
		if err != nil {
			return err
		}
		err = b.Update(ctx, key, value, rev)
		if errors.Is(err, errRevisionMismatch) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to put %s[%s]: %w", kind, e.ID, err)
		}
		return nil
	}
	return fmt.Errorf("failed to put %s[%s]: %w", kind, e.ID, errRevisionMismatch)
}

func (s *KV) UpdateEntity(ctx context.Context, userID string, kind models.Kind, id string, patch models.EntityPatch) error {
	b, err := s.bucket(kind)
	if err != nil {
		return err
	}
	key := entityKey(userID, id)
	return compareAndSet(ctx, b, key, func(value []byte) ([]byte, error) {
		var e models.Entity
		if err := json.Unmarshal(value, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s[%s]: %w", kind, id, err)
		}
		if err := applyEntity(&e, patch); err != nil {
			return nil, err
		}
		return json.Marshal(e)
	})
}

func (s *KV) DeleteEntity(ctx context.Context, userID string, kind models.Kind, id string) error {
	b, err := s.bucket(kind)
	if err != nil {
		return err
	}
	key := entityKey(userID, id)
	if _, _, err := b.Get(ctx, key); err != nil {
		return err
	}
	if err := b.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", kind, id, err)
	}
	return nil
}

func (s *KV) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	value, _, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	var a models.Account
	if err := json.Unmarshal(value, &a); err != nil {
		return nil, fmt.Errorf("failed to decode account[%s]: %w", userID, err)
	}
	return &a, nil
}

func (s *KV) UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) (*models.Account, error) {
	var out models.Account
	err := compareAndSet(ctx, s.accounts, userID, func(value []byte) ([]byte, error) {
		var a models.Account
		if err := json.Unmarshal(value, &a); err != nil {
			return nil, fmt.Errorf("failed to decode account[%s]: %w", userID, err)
		}
		if err := applyAccount(&a, patch); err != nil {
			return nil, err
		}
		out = a
		return json.Marshal(a)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *KV) CreateAccount(ctx context.Context, a *models.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	value, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.accounts.Create(ctx, a.ID, value)
}

// compareAndSet rewrites key with fn(current) and retries when another
// writer got in first.
func compareAndSet(ctx context.Context, b Bucket, key string, fn func([]byte) ([]byte, error)) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		value, rev, err := b.Get(ctx, key)
		if err != nil {
			return err
		}
		next, err := fn(value)
		if err != nil {
			return err
		}
		err = b.Update(ctx, key, next, rev)
		if errors.Is(err, errRevisionMismatch) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("failed to update %s: %w", key, errRevisionMismatch)
}

// jsBucket adapts jetstream.KeyValue to Bucket.
type jsBucket struct {
	kv jetstream.KeyValue
}

func (b *jsBucket) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	entry, err := b.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return nil, 0, common.ErrorNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return entry.Value(), entry.Revision(), nil
}

func (b *jsBucket) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.kv.Put(ctx, key, value)
	return err
}

func (b *jsBucket) Create(ctx context.Context, key string, value []byte) error {
	_, err := b.kv.Create(ctx, key, value)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return common.ErrorAlreadyExists
	}
	return err
}

func (b *jsBucket) Update(ctx context.Context, key string, value []byte, revision uint64) error {
	_, err := b.kv.Update(ctx, key, value, revision)
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence {
		return errRevisionMismatch
	}
	return err
}

func (b *jsBucket) Delete(ctx context.Context, key string) error {
	return b.kv.Delete(ctx, key)
}

func (b *jsBucket) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	return keys, err
}
