package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
)

// Backup uploads an encrypted snapshot of the account and both
// collections. It needs the server.
func (a *App) Backup(ctx context.Context, _ []string) error {
	if !a.online {
		return fmt.Errorf("backup: %w", client.ErrNotSupported)
	}
	if a.mode() != ModeOnline {
		return fmt.Errorf("backup: %w", client.ErrUnavailable)
	}
	key, err := a.backupService.Backup(ctx, a.userID(), a.session.MasterKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup stored as %s\n", key)
	return nil
}
