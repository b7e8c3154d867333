package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/augustine-bot/augustine/backend/internal/app"
	"github.com/augustine-bot/augustine/backend/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "augustinectl",
	Short: "Operate the Augustine chat bot",
	Long: `Operator tooling for the Augustine backend.

  augustinectl migrate             # create chat history tables
  augustinectl index --recreate    # embed the corpus into Qdrant
  augustinectl tweet post          # publish an illustrated wisdom tweet
  augustinectl mentions --reply    # answer mentions of the bot account
  augustinectl chat                # talk to a running server`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading configuration")
}

func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return config.Load()
}

// withApp builds the shared services for the duration of fn.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
