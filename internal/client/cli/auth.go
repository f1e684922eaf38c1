package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// getSimpleText and getPassword are test seams for interactive input.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, a display name and a password and
// creates the user on the active backend.
func (a *App) Register(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	displayName, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Register(ctx, userName, displayName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.st.Success.Render("Registered! You can log in now."))
	return nil
}

// Login authenticates the user. With a server it tries online first and
// falls back to the offline verifier when the server is unreachable.
func (a *App) Login(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if !a.online {
		s, err := a.authService.OfflineLogin(ctx, userName, password)
		if err != nil {
			return err
		}
		a.session = s
		a.log.Info(ctx, "local login", "user", s.UserID)
		return a.welcome(ctx)
	}

	s, err := a.authService.OnlineLogin(ctx, userName, password)
	switch {
	case err == nil:
		a.session = s
		a.setMode(ModeOnline)

	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, trying offline login...")
		s, err = a.authService.OfflineLogin(ctx, userName, password)
		if err != nil {
			a.setMode(ModeDisabled)
			return err
		}
		a.session = s
		a.setMode(ModeOffline)

	default:
		return err
	}

	a.log.Info(ctx, "login", "user", s.UserID, "mode", string(a.mode()))
	return a.welcome(ctx)
}

// welcome loads both collections, seeding defaults for a new user, and
// shows the balance.
func (a *App) welcome(ctx context.Context) error {
	for _, kind := range models.Kinds() {
		if _, err := a.syncer.Get(ctx, a.userID(), kind); err != nil {
			return err
		}
	}
	return a.Balance(ctx, nil)
}

// Logout drops the session. With a server it also forgets the offline
// credentials stored at login.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if a.session == nil {
		return nil
	}
	if a.online {
		if err := a.authService.ClearOfflineData(ctx, a.session.Username); err != nil {
			return err
		}
	}
	a.session.Wipe()
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
