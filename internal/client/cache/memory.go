package cache

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// Memory is a process-wide LocalCache. Its lifetime is that of the value;
// construct one per session or per process and inject it.
//
// Entries are keyed by user first so Purge touches exactly one user no
// matter what characters the id contains.
type Memory struct {
	mu       sync.RWMutex
	entities map[string]map[models.Kind][]models.Entity
	accounts map[string]*models.Account
}

var _ LocalCache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		entities: make(map[string]map[models.Kind][]models.Entity),
		accounts: make(map[string]*models.Account),
	}
}

func (m *Memory) Entities(_ context.Context, userID string, kind models.Kind) ([]models.Entity, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	es, ok := m.entities[userID][kind]
	if !ok {
		return nil, false, nil
	}
	return models.CloneEntities(es), true, nil
}

func (m *Memory) SetEntities(_ context.Context, userID string, kind models.Kind, es []models.Entity) error {
	cp := models.CloneEntities(es)

	m.mu.Lock()
	defer m.mu.Unlock()
	byKind, ok := m.entities[userID]
	if !ok {
		byKind = make(map[models.Kind][]models.Entity)
		m.entities[userID] = byKind
	}
	byKind[kind] = cp
	return nil
}

func (m *Memory) ClearEntities(_ context.Context, userID string, kind models.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byKind, ok := m.entities[userID]
	if !ok {
		return nil
	}
	delete(byKind, kind)
	if len(byKind) == 0 {
		delete(m.entities, userID)
	}
	return nil
}

func (m *Memory) Account(_ context.Context, userID string) (*models.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[userID]
	return a.Clone(), ok, nil
}

func (m *Memory) SetAccount(_ context.Context, a *models.Account) error {
	cp := a.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = cp
	return nil
}

func (m *Memory) Purge(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities, userID)
	delete(m.accounts, userID)
	return nil
}
