package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
)

type handler func(ctx context.Context, args []string) error

// execIface is the command surface the REPL drives. App satisfies it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Missions(ctx context.Context, args []string) error
	Rewards(ctx context.Context, args []string) error
	Complete(ctx context.Context, args []string) error
	Redeem(ctx context.Context, args []string) error
	AddMission(ctx context.Context, args []string) error
	AddReward(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Balance(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Bonus(ctx context.Context, args []string) error
	Spend(ctx context.Context, args []string) error
	Journal(ctx context.Context, args []string) error
	Backup(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = `Available commands:
  (m)issions, (r)ewards        list missions or rewards
  complete <#|id>              complete a mission
  redeem <#|id>                redeem a reward
  addmission, addreward        create a mission or a reward
  edit mission|reward <#|id>   change title, description or energy
  delete mission|reward <#|id> delete a mission or a reward
  reset mission|reward         restore the default catalog
  sync                         refresh from the store
  (b)alance, stats             show energy and progress
  bonus <n>, spend <n>         adjust energy by hand
  journal [add|list|show|delete]
  backup                       upload an encrypted snapshot
  logout, exit`
)

// route maps a command word to its handler. The bool reports whether
// the command needs a logged-in user.
func route(a execIface, cmd string) (string, handler, bool) {
	switch cmd {
	case "register":
		return "register", a.Register, false
	case "login":
		return "log in", a.Login, false
	case "logout":
		return "log out", a.Logout, true
	case "m", "missions":
		return "list missions", a.Missions, true
	case "r", "rewards":
		return "list rewards", a.Rewards, true
	case "complete", "done":
		return "complete the mission", a.Complete, true
	case "redeem":
		return "redeem the reward", a.Redeem, true
	case "addmission":
		return "add the mission", a.AddMission, true
	case "addreward":
		return "add the reward", a.AddReward, true
	case "edit":
		return "edit", a.Edit, true
	case "delete":
		return "delete", a.Delete, true
	case "reset":
		return "reset", a.Reset, true
	case "sync":
		return "sync", a.Sync, true
	case "b", "balance":
		return "load the balance", a.Balance, true
	case "stats":
		return "load stats", a.Stats, true
	case "bonus":
		return "add energy", a.Bonus, true
	case "spend":
		return "spend energy", a.Spend, true
	case "j", "journal":
		return "use the journal", a.Journal, true
	case "backup":
		return "back up", a.Backup, true
	}
	return "", nil, false
}

// runREPL reads commands line by line from reader and dispatches them
// until EOF or "exit". Handler errors are reported to the user and never
// end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "tq %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "h", "?":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpLoggedIn)
			} else {
				fmt.Fprintln(out, helpLoggedOut)
			}
			continue
		case "exit", "quit", "q":
			fmt.Fprintln(out, "Bye!")
			return
		}

		action, h, needsLogin := route(a, cmd)
		switch {
		case h == nil:
			fmt.Fprintln(out, "Unknown command:", cmd)
		case needsLogin && !a.isLoggedIn():
			fmt.Fprintln(out, "Please log in first")
		default:
			if err := h(ctx, args); err != nil {
				fmt.Fprintln(out, userMessage(action, err))
			}
		}
	}
}

// userMessage turns a handler error into a sentence naming the failed
// action.
func userMessage(action string, err error) string {
	var reason string
	switch {
	case errors.Is(err, common.ErrInsufficientEnergy):
		reason = "not enough energy"
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, common.ErrorUnauthorized):
		reason = "wrong username or password"
	case errors.Is(err, client.ErrLocalDataNotAvailable):
		reason = "no offline data for this user, log in online first"
	case errors.Is(err, client.ErrUnavailable):
		reason = "server unavailable"
	case errors.Is(err, client.ErrNotSupported):
		reason = "not available with this backend"
	case errors.Is(err, common.ErrorAlreadyExists):
		reason = "already exists"
	case errors.Is(err, common.ErrPersistence):
		reason = "changes could not be saved"
	default:
		reason = err.Error()
	}
	return fmt.Sprintf("Could not %s: %s. Please try again.", action, reason)
}

func (a *App) status() string {
	mode := string(a.mode())
	if a.session == nil {
		return mode
	}
	return a.session.Username + "@" + mode
}

// Root runs the interactive session until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, a.st.Title.Render("Welcome to TokenQuest (type 'help' for commands)"))
	runREPL(ctx, a, a.status, a.reader, a.out)
}
