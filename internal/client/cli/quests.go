package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

var (
	errUsage        = errors.New("wrong usage")
	errAmbiguousRef = errors.New("ambiguous reference")
)

// list returns the collection in display order; list positions shown to
// the user index into this order.
func (a *App) list(ctx context.Context, kind models.Kind) ([]models.Entity, error) {
	es, err := a.syncer.Get(ctx, a.userID(), kind)
	if err != nil {
		return nil, err
	}
	models.SortForDisplay(es)
	return es, nil
}

// resolveRef finds an entity by its 1-based list position or by a unique
// id prefix.
func (a *App) resolveRef(ctx context.Context, kind models.Kind, ref string) (models.Entity, error) {
	es, err := a.list(ctx, kind)
	if err != nil {
		return models.Entity{}, err
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(es) {
			return models.Entity{}, fmt.Errorf("%s #%d: %w", kind, n, common.ErrorNotFound)
		}
		return es[n-1], nil
	}

	var found []models.Entity
	for _, e := range es {
		if strings.HasPrefix(e.ID, ref) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return models.Entity{}, fmt.Errorf("%s %q: %w", kind, ref, common.ErrorNotFound)
	case 1:
		return found[0], nil
	}
	return models.Entity{}, fmt.Errorf("%s %q: %w", kind, ref, errAmbiguousRef)
}

func parseKindArg(args []string) (models.Kind, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: expected mission or reward", errUsage)
	}
	return models.ParseKind(args[0])
}

func (a *App) show(ctx context.Context, kind models.Kind) error {
	es, err := a.list(ctx, kind)
	if err != nil {
		return err
	}
	renderEntities(a.out, a.st, kind, es)
	return nil
}

func (a *App) Missions(ctx context.Context, _ []string) error {
	return a.show(ctx, models.KindMission)
}

func (a *App) Rewards(ctx context.Context, _ []string) error {
	return a.show(ctx, models.KindReward)
}

// Complete marks a mission done and credits its energy.
func (a *App) Complete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: complete <#|id>", errUsage)
	}
	e, err := a.resolveRef(ctx, models.KindMission, args[0])
	if err != nil {
		return err
	}
	acc, err := a.ledger.CompleteMission(ctx, a.userID(), e.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", a.st.Success.Render("Completed "+strconv.Quote(e.Title)), a.st.Energy.Render(fmt.Sprintf("+%d", e.EnergyValue)))
	renderAccount(a.out, a.st, acc)
	return nil
}

// Redeem spends energy on a reward.
func (a *App) Redeem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: redeem <#|id>", errUsage)
	}
	e, err := a.resolveRef(ctx, models.KindReward, args[0])
	if err != nil {
		return err
	}
	acc, err := a.ledger.RedeemReward(ctx, a.userID(), e.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", a.st.Success.Render("Redeemed "+strconv.Quote(e.Title)), a.st.Energy.Render(fmt.Sprintf("-%d", e.EnergyValue)))
	renderAccount(a.out, a.st, acc)
	return nil
}

func (a *App) promptEntity(kind models.Kind, e *models.Entity) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	label := "Energy reward"
	if kind == models.KindReward {
		label = "Energy cost"
	}
	raw, err := getSimpleText(a.reader, label, a.out)
	if err != nil {
		return err
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: energy must be a number", common.ErrValidation)
	}

	e.Title, e.Description, e.EnergyValue = title, description, value
	return nil
}

func (a *App) add(ctx context.Context, kind models.Kind) error {
	e := models.Entity{Kind: kind}
	if err := a.promptEntity(kind, &e); err != nil {
		return err
	}
	saved, err := a.syncer.Save(ctx, a.userID(), kind, e)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s\n", kind, shortID(saved.ID))
	return nil
}

func (a *App) AddMission(ctx context.Context, _ []string) error {
	return a.add(ctx, models.KindMission)
}

func (a *App) AddReward(ctx context.Context, _ []string) error {
	return a.add(ctx, models.KindReward)
}

// Edit rewrites the user-editable fields of an entity.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: edit mission|reward <#|id>", errUsage)
	}
	kind, err := parseKindArg(args)
	if err != nil {
		return err
	}
	e, err := a.resolveRef(ctx, kind, args[1])
	if err != nil {
		return err
	}
	if err := a.promptEntity(kind, &e); err != nil {
		return err
	}
	if _, err := a.syncer.Save(ctx, a.userID(), kind, e); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s %s\n", kind, shortID(e.ID))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: delete mission|reward <#|id>", errUsage)
	}
	kind, err := parseKindArg(args)
	if err != nil {
		return err
	}
	e, err := a.resolveRef(ctx, kind, args[1])
	if err != nil {
		return err
	}
	if err := a.syncer.Remove(ctx, a.userID(), kind, e.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s %q\n", kind, e.Title)
	return nil
}

// Reset replaces a collection with a fresh copy of the default catalog.
func (a *App) Reset(ctx context.Context, args []string) error {
	kind, err := parseKindArg(args)
	if err != nil {
		return err
	}
	es, err := a.syncer.Sync(ctx, a.userID(), kind, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reset %s: %d items\n", kind.Collection(), len(es))
	return nil
}

// Sync refreshes both collections from the store.
func (a *App) Sync(ctx context.Context, _ []string) error {
	for _, kind := range models.Kinds() {
		es, err := a.syncer.Sync(ctx, a.userID(), kind, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: %d\n", kind.Collection(), len(es))
	}
	return a.Balance(ctx, nil)
}

func (a *App) Balance(ctx context.Context, _ []string) error {
	acc, err := a.ledger.Account(ctx, a.userID())
	if err != nil {
		return err
	}
	renderAccount(a.out, a.st, acc)
	return nil
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	s, err := a.statsService.Stats(ctx, a.userID())
	if err != nil {
		return err
	}
	streak, err := a.statsService.Streak(ctx, a.userID(), a.now())
	if err != nil {
		return err
	}
	renderStats(a.out, a.st, s, streak)
	return nil
}

func (a *App) adjust(ctx context.Context, args []string, sign int64) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected an amount", errUsage)
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", common.ErrValidation)
	}
	acc, err := a.ledger.AdjustEnergy(ctx, a.userID(), sign*n)
	if err != nil {
		return err
	}
	renderAccount(a.out, a.st, acc)
	return nil
}

// Bonus credits energy outside of missions.
func (a *App) Bonus(ctx context.Context, args []string) error {
	return a.adjust(ctx, args, 1)
}

// Spend debits energy outside of rewards.
func (a *App) Spend(ctx context.Context, args []string) error {
	return a.adjust(ctx, args, -1)
}
