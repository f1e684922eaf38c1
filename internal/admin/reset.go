package admin

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/spf13/cobra"
)

type ResetOptions struct {
	*RootOptions
	User string
}

// NewResetCommand creates the reset command. It replaces a collection with
// the catalog defaults; the account balance is left alone.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset <missions|rewards>",
		Short: "Replace a user's missions or rewards with the defaults",
		Example: `  tokenquest-admin reset missions --user alice
  tokenquest-admin reset rewards --user 6f1c2d4e-0000-4000-8000-000000000001`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "username or user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

type resetResult struct {
	UserID   string          `json:"userId"`
	Kind     models.Kind     `json:"kind"`
	Entities []models.Entity `json:"entities"`
}

func runReset(cmd *cobra.Command, opts *ResetOptions, arg string) error {
	kind, err := models.ParseKind(arg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withEnv(ctx, opts.RootOptions, func(env *Env) error {
		userID, err := env.resolveUser(ctx, opts.User)
		if err != nil {
			return err
		}
		es, err := env.syncer.Sync(ctx, userID, kind, true)
		if err != nil {
			return fmt.Errorf("reset %s: %w", kind.Collection(), err)
		}
		env.log.Info(ctx, "collection reset", "user_id", userID, "kind", kind.String(), "count", len(es))

		out := output{format: opts.Format, w: cmd.OutOrStdout()}
		return out.emit(resetResult{UserID: userID, Kind: kind, Entities: es}, func(w io.Writer) {
			fmt.Fprintf(w, "%s of %s reset to %d defaults\n", kind.Collection(), userID, len(es))
			if opts.Verbose {
				writeEntities(w, kind, es)
			}
		})
	})
}
