package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/augustine-bot/augustine/backend/internal/app"
)

var (
	mentionsOnce  bool
	mentionsReply bool
)

var mentionsCmd = &cobra.Command{
	Use:   "mentions",
	Short: "Poll for new mentions of the bot account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			checker, err := a.MentionChecker(mentionsReply)
			if err != nil {
				return err
			}

			if mentionsOnce {
				n, err := checker.Check(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d new mentions\n", n)
				return nil
			}
			err = checker.Run(cmd.Context(), a.Config.Social.MentionsInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	},
}

func init() {
	mentionsCmd.Flags().BoolVar(&mentionsOnce, "once", false, "check a single time and exit")
	mentionsCmd.Flags().BoolVar(&mentionsReply, "reply", false, "reply to each new mention")
	rootCmd.AddCommand(mentionsCmd)
}
