package admin

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var errZeroDelta = errors.New("--delta must not be zero")

type AdjustEnergyOptions struct {
	*RootOptions
	User  string
	Delta int64
}

// NewAdjustEnergyCommand creates the adjust-energy command. A positive delta
// also counts towards the total earned; a negative one may not overdraw.
func NewAdjustEnergyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdjustEnergyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "adjust-energy",
		Short: "Add energy to or remove energy from a user's account",
		Example: `  tokenquest-admin adjust-energy --user alice --delta 50
  tokenquest-admin adjust-energy --user alice --delta=-20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdjustEnergy(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "username or user id")
	cmd.Flags().Int64Var(&opts.Delta, "delta", 0, "energy to add (negative to remove)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("delta")

	return cmd
}

func runAdjustEnergy(cmd *cobra.Command, opts *AdjustEnergyOptions) error {
	if opts.Delta == 0 {
		return errZeroDelta
	}

	ctx := cmd.Context()
	return withEnv(ctx, opts.RootOptions, func(env *Env) error {
		userID, err := env.resolveUser(ctx, opts.User)
		if err != nil {
			return err
		}
		acct, err := env.ledger.AdjustEnergy(ctx, userID, opts.Delta)
		if err != nil {
			return fmt.Errorf("adjust energy: %w", err)
		}
		env.log.Info(ctx, "energy adjusted", "user_id", userID, "delta", opts.Delta, "energy", acct.Energy)

		out := output{format: opts.Format, w: cmd.OutOrStdout()}
		return out.emit(acct, func(w io.Writer) {
			fmt.Fprintf(w, "energy of %s adjusted by %+d\n", userID, opts.Delta)
			writeAccount(w, acct)
		})
	})
}
