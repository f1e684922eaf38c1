package admin

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/services"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/spf13/cobra"
)

type ShowOptions struct {
	*RootOptions
	User string

	now func() time.Time
}

func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts, now: time.Now}

	cmd := &cobra.Command{
		Use:           "show",
		Short:         "Print a user's account, stats, missions and rewards",
		Example:       `  tokenquest-admin show --user alice --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "username or user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

type showResult struct {
	UserID            string          `json:"userId"`
	Account           *models.Account `json:"account"`
	Missions          []models.Entity `json:"missions"`
	Rewards           []models.Entity `json:"rewards"`
	CompletedMissions int             `json:"completedMissions"`
	RedeemedRewards   int             `json:"redeemedRewards"`
	EnergyEarned      int64           `json:"energyEarned"`
	EnergySpent       int64           `json:"energySpent"`
	Streak            int             `json:"streak"`
}

func runShow(cmd *cobra.Command, opts *ShowOptions) error {
	ctx := cmd.Context()
	return withEnv(ctx, opts.RootOptions, func(env *Env) error {
		userID, err := env.resolveUser(ctx, opts.User)
		if err != nil {
			return err
		}

		st, err := env.stats.Stats(ctx, userID)
		if err != nil {
			return err
		}
		streak, err := env.stats.Streak(ctx, userID, opts.now())
		if err != nil {
			return err
		}
		missions, err := env.syncer.Get(ctx, userID, models.KindMission)
		if err != nil {
			return err
		}
		rewards, err := env.syncer.Get(ctx, userID, models.KindReward)
		if err != nil {
			return err
		}
		models.SortForDisplay(missions)
		models.SortForDisplay(rewards)

		res := newShowResult(userID, st, streak, missions, rewards)
		out := output{format: opts.Format, w: cmd.OutOrStdout()}
		return out.emit(res, func(w io.Writer) {
			writeAccount(w, res.Account)
			fmt.Fprintf(w, "  streak:             %d day(s)\n", res.Streak)
			fmt.Fprintf(w, "  energy earned:      %d\n", res.EnergyEarned)
			fmt.Fprintf(w, "  energy spent:       %d\n", res.EnergySpent)
			writeEntities(w, models.KindMission, res.Missions)
			writeEntities(w, models.KindReward, res.Rewards)
		})
	})
}

func newShowResult(userID string, st *services.Stats, streak int, missions, rewards []models.Entity) showResult {
	return showResult{
		UserID:            userID,
		Account:           st.Account,
		Missions:          missions,
		Rewards:           rewards,
		CompletedMissions: st.CompletedMissions,
		RedeemedRewards:   st.RedeemedRewards,
		EnergyEarned:      st.EnergyEarned,
		EnergySpent:       st.EnergySpent,
		Streak:            streak,
	}
}
