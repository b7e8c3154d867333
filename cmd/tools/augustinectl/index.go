package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/augustine-bot/augustine/backend/internal/app"
)

var (
	indexDir      string
	indexRecreate bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the text corpus into the Qdrant collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			ix, err := a.Indexer()
			if err != nil {
				return err
			}

			dir := indexDir
			if dir == "" {
				dir = a.Config.Retrieval.CorpusDir
			}

			stats, err := ix.Index(cmd.Context(), dir, indexRecreate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files, %d chunks into %s\n",
				stats.Files, stats.Chunks, a.Config.Retrieval.Collection)
			return nil
		})
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexDir, "dir", "", "corpus directory (defaults to CORPUS_DIR)")
	indexCmd.Flags().BoolVar(&indexRecreate, "recreate", false, "drop and recreate the collection first")
	rootCmd.AddCommand(indexCmd)
}
