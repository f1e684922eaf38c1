package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/cryptox"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/netx"
)

const snapshotVersion = 1

// Snapshot is the plaintext of a backup.
type Snapshot struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	Account   *models.Account `json:"account,omitempty"`
	Missions  []models.Entity `json:"missions"`
	Rewards   []models.Entity `json:"rewards"`
}

// BackupService uploads an encrypted snapshot of a user's data through a
// presigned URL issued by the server.
type BackupService interface {
	// Backup returns the object key the snapshot was stored under.
	Backup(ctx context.Context, userID string, masterKey []byte) (string, error)
}

type backupService struct {
	client client.Client
	syncer EntitySyncer
	ledger LedgerService
	http   *http.Client
	now    func() time.Time
}

// NewBackupService needs a server client; without one Backup reports
// client.ErrNotSupported. hc may be nil.
func NewBackupService(c client.Client, syncer EntitySyncer, ledger LedgerService, hc *http.Client, opts ...Option) BackupService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if hc == nil {
		hc = netx.DefaultClient
	}
	return &backupService{client: c, syncer: syncer, ledger: ledger, http: hc, now: o.now}
}

func (s *backupService) Backup(ctx context.Context, userID string, masterKey []byte) (string, error) {
	if s.client == nil {
		return "", client.ErrNotSupported
	}
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return "", err
	}

	plain, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	blob, err := cryptox.SealBytes(plain, masterKey)
	common.WipeByteArray(plain)
	if err != nil {
		return "", fmt.Errorf("encryption error: %w", err)
	}

	key, url, err := s.client.PresignBackup(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("presign error: %w", err)
	}
	if err := netx.PutPresigned(ctx, s.http, url, blob); err != nil {
		return "", err
	}
	return key, nil
}

func (s *backupService) snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	missions, err := s.syncer.Get(ctx, userID, models.KindMission)
	if err != nil {
		return nil, err
	}
	rewards, err := s.syncer.Get(ctx, userID, models.KindReward)
	if err != nil {
		return nil, err
	}
	acct, err := s.ledger.Account(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return &Snapshot{
		Version:   snapshotVersion,
		CreatedAt: s.now().UTC(),
		Account:   acct,
		Missions:  missions,
		Rewards:   rewards,
	}, nil
}

// OpenSnapshot decrypts and decodes a backup blob.
func OpenSnapshot(blob, masterKey []byte) (*Snapshot, error) {
	plain, err := cryptox.OpenBytes(blob, masterKey)
	if err != nil {
		return nil, fmt.Errorf("decryption error: %w", err)
	}
	defer common.WipeByteArray(plain)

	var snap Snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return nil, err
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return &snap, nil
}
