package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/augustine-bot/augustine/backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the chat history tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Store.Persistent() {
			return fmt.Errorf("STORE_DRIVER is %q; nothing to migrate", cfg.Store.Driver)
		}

		cfg.Store.AutoMigrate = true
		st, err := app.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", cfg.Store.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
