package cli

import (
	"context"
	"fmt"
	"strings"

	climodels "github.com/dmitrijs2005/tokenquest/internal/client/models"
	"github.com/dmitrijs2005/tokenquest/internal/common"
)

// Journal dispatches the journal subcommands: add, list, show, delete.
func (a *App) Journal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.journalList(ctx)
	}
	switch args[0] {
	case "add":
		return a.journalAdd(ctx)
	case "list", "ls":
		return a.journalList(ctx)
	case "show":
		if len(args) != 2 {
			return fmt.Errorf("%w: journal show <id>", errUsage)
		}
		return a.journalShow(ctx, args[1])
	case "delete", "rm":
		if len(args) != 2 {
			return fmt.Errorf("%w: journal delete <id>", errUsage)
		}
		return a.journalDelete(ctx, args[1])
	}
	return fmt.Errorf("%w: journal add|list|show|delete", errUsage)
}

func (a *App) journalAdd(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	rawMood, err := getSimpleText(a.reader, "Mood (great, good, neutral, bad, awful)", a.out)
	if err != nil {
		return err
	}
	mood, err := climodels.ParseMood(rawMood)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Write your page", a.out)
	if err != nil {
		return err
	}

	entry := climodels.JournalEntry{
		JournalOverview: climodels.JournalOverview{Title: title, Mood: mood},
		JournalDetails:  climodels.JournalDetails{Content: content},
	}
	id, err := a.journalService.Add(ctx, a.userID(), entry, a.session.MasterKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved page %s\n", shortID(id))
	return nil
}

func (a *App) journalList(ctx context.Context) error {
	es, err := a.journalService.List(ctx, a.userID(), a.session.MasterKey)
	if err != nil {
		return err
	}
	renderJournal(a.out, a.st, es)
	return nil
}

// journalID expands a unique id prefix to the full page id.
func (a *App) journalID(ctx context.Context, ref string) (string, error) {
	es, err := a.journalService.List(ctx, a.userID(), a.session.MasterKey)
	if err != nil {
		return "", err
	}
	var found []string
	for _, e := range es {
		if strings.HasPrefix(e.ID, ref) {
			found = append(found, e.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("journal page %q: %w", ref, common.ErrorNotFound)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("journal page %q: %w", ref, errAmbiguousRef)
}

func (a *App) journalShow(ctx context.Context, ref string) error {
	id, err := a.journalID(ctx, ref)
	if err != nil {
		return err
	}
	e, err := a.journalService.Get(ctx, a.userID(), id, a.session.MasterKey)
	if err != nil {
		return err
	}
	renderJournalEntry(a.out, a.st, e)
	return nil
}

func (a *App) journalDelete(ctx context.Context, ref string) error {
	id, err := a.journalID(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.journalService.Delete(ctx, a.userID(), id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted page %s\n", shortID(id))
	return nil
}
