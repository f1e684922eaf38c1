package stores

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// Op names a Memory store operation for fault injection.
type Op string

const (
	OpList          Op = "list"
	OpPut           Op = "put"
	OpUpdate        Op = "update"
	OpDelete        Op = "delete"
	OpGetAccount    Op = "get_account"
	OpUpdateAccount Op = "update_account"
	OpCreateAccount Op = "create_account"
)

// FaultFunc decides whether call n (1-based, per op) of op fails.
type FaultFunc func(op Op, n int) error

// Memory is an in-process RemoteStore. Entity lists keep insertion order.
type Memory struct {
	mu       sync.Mutex
	entities map[string][]models.Entity
	accounts map[string]*models.Account
	calls    map[Op]int
	fault    FaultFunc
}

var (
	_ client.RemoteStore = (*Memory)(nil)
	_ AccountCreator     = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		entities: make(map[string][]models.Entity),
		accounts: make(map[string]*models.Account),
		calls:    make(map[Op]int),
	}
}

// SetFault installs f; nil removes fault injection.
func (m *Memory) SetFault(f FaultFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = f
}

// FailOn makes every call of op fail with err.
func (m *Memory) FailOn(op Op, err error) {
	m.SetFault(func(o Op, _ int) error {
		if o == op {
			return err
		}
		return nil
	})
}

// Calls reports how many times op was invoked, failed calls included.
func (m *Memory) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// enter must be called with m.mu held.
func (m *Memory) enter(op Op) error {
	m.calls[op]++
	if m.fault != nil {
		return m.fault(op, m.calls[op])
	}
	return nil
}

func collectionKey(userID string, kind models.Kind) string {
	return userID + "/" + string(kind)
}

func (m *Memory) ListCollection(_ context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpList); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return models.CloneEntities(m.entities[collectionKey(userID, kind)]), nil
}

func (m *Memory) PutEntity(_ context.Context, userID string, kind models.Kind, e models.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPut); err != nil {
		return err
	}
	if err := normalize(kind, &e); err != nil {
		return err
	}

	key := collectionKey(userID, kind)
	list := m.entities[key]
	if i := models.IndexOf(list, e.ID); i >= 0 {
		keepResolution(&e, list[i])
		list[i] = e.Clone()
		return nil
	}
	m.entities[key] = append(list, e.Clone())
	return nil
}

func (m *Memory) UpdateEntity(_ context.Context, userID string, kind models.Kind, id string, patch models.EntityPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpUpdate); err != nil {
		return err
	}

	list := m.entities[collectionKey(userID, kind)]
	i := models.IndexOf(list, id)
	if i < 0 {
		return common.ErrorNotFound
	}
	e := list[i].Clone()
	if err := applyEntity(&e, patch); err != nil {
		return err
	}
	list[i] = e
	return nil
}

func (m *Memory) DeleteEntity(_ context.Context, userID string, kind models.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpDelete); err != nil {
		return err
	}

	key := collectionKey(userID, kind)
	list := m.entities[key]
	i := models.IndexOf(list, id)
	if i < 0 {
		return common.ErrorNotFound
	}
	next := make([]models.Entity, 0, len(list)-1)
	next = append(next, list[:i]...)
	m.entities[key] = append(next, list[i+1:]...)
	return nil
}

func (m *Memory) GetAccount(_ context.Context, userID string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGetAccount); err != nil {
		return nil, err
	}
	a, ok := m.accounts[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (m *Memory) UpdateAccount(_ context.Context, userID string, patch models.AccountPatch) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpUpdateAccount); err != nil {
		return nil, err
	}
	a, ok := m.accounts[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	next := a.Clone()
	if err := applyAccount(next, patch); err != nil {
		return nil, err
	}
	m.accounts[userID] = next
	return next.Clone(), nil
}

func (m *Memory) CreateAccount(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpCreateAccount); err != nil {
		return err
	}
	if _, ok := m.accounts[a.ID]; ok {
		return common.ErrorAlreadyExists
	}
	m.accounts[a.ID] = a.Clone()
	return nil
}
