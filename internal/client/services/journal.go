package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/models"
	"github.com/dmitrijs2005/tokenquest/internal/client/repositories/journal"
	"github.com/dmitrijs2005/tokenquest/internal/cryptox"
)

// JournalService keeps private journal pages in the local database. Overview
// and details are sealed separately with the master key, so List never
// decrypts page bodies.
type JournalService interface {
	Add(ctx context.Context, userID string, entry models.JournalEntry, masterKey []byte) (string, error)
	// List returns overviews only, newest first.
	List(ctx context.Context, userID string, masterKey []byte) ([]models.JournalEntry, error)
	Get(ctx context.Context, userID, id string, masterKey []byte) (*models.JournalEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

type journalService struct {
	repo  journal.Repository
	now   func() time.Time
	newID func() string
}

func NewJournalService(repo journal.Repository, opts ...Option) JournalService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &journalService{repo: repo, now: o.now, newID: o.newID}
}

func (s *journalService) Add(ctx context.Context, userID string, entry models.JournalEntry, masterKey []byte) (string, error) {
	if err := checkUser(userID); err != nil {
		return "", err
	}
	mood, err := models.ParseMood(string(entry.Mood))
	if err != nil {
		return "", err
	}
	entry.Mood = mood
	if err := entry.Validate(); err != nil {
		return "", err
	}

	overview, nonceOverview, err := cryptox.Seal(entry.JournalOverview, masterKey)
	if err != nil {
		return "", fmt.Errorf("encryption error: %w", err)
	}
	details, nonceDetails, err := cryptox.Seal(entry.JournalDetails, masterKey)
	if err != nil {
		return "", fmt.Errorf("encryption error: %w", err)
	}

	rec := &models.JournalRecord{
		ID:            s.newID(),
		UserID:        userID,
		Overview:      overview,
		NonceOverview: nonceOverview,
		Details:       details,
		NonceDetails:  nonceDetails,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("saving error: %w", err)
	}
	return rec.ID, nil
}

func (s *journalService) List(ctx context.Context, userID string, masterKey []byte) ([]models.JournalEntry, error) {
	recs, err := s.repo.ListOverviews(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.JournalEntry, 0, len(recs))
	for _, rec := range recs {
		var ov models.JournalOverview
		if err := cryptox.Open(rec.Overview, rec.NonceOverview, masterKey, &ov); err != nil {
			return nil, fmt.Errorf("decryption error: %w", err)
		}
		out = append(out, models.JournalEntry{ID: rec.ID, CreatedAt: rec.CreatedAt, JournalOverview: ov})
	}
	return out, nil
}

func (s *journalService) Get(ctx context.Context, userID, id string, masterKey []byte) (*models.JournalEntry, error) {
	rec, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	entry := &models.JournalEntry{ID: rec.ID, CreatedAt: rec.CreatedAt}
	if err := cryptox.Open(rec.Overview, rec.NonceOverview, masterKey, &entry.JournalOverview); err != nil {
		return nil, fmt.Errorf("decryption error: %w", err)
	}
	if err := cryptox.Open(rec.Details, rec.NonceDetails, masterKey, &entry.JournalDetails); err != nil {
		return nil, fmt.Errorf("decryption error: %w", err)
	}
	return entry, nil
}

func (s *journalService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
