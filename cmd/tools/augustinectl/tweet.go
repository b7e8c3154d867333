package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/augustine-bot/augustine/backend/internal/app"
)

var tweetCmd = &cobra.Command{
	Use:   "tweet",
	Short: "Publish to or interact with the bot's Twitter account",
}

var tweetPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Generate, illustrate and publish a wisdom tweet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			poster, err := a.Poster()
			if err != nil {
				return err
			}
			res, err := poster.Post(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "posted %s: %s\n", res.TweetID, res.Text)
			return nil
		})
	},
}

var tweetLikeCmd = &cobra.Command{
	Use:   "like <tweet-id>",
	Short: "Like a tweet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := a.Twitter().Like(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "liked %s\n", args[0])
			return nil
		})
	},
}

func init() {
	tweetCmd.AddCommand(tweetPostCmd, tweetLikeCmd)
	rootCmd.AddCommand(tweetCmd)
}
