package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/whiskerworthy/dogdiet/internal/config"
)

var version = "dev"

var (
	noColor    bool
	verbose    bool
	configPath string

	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:           "dogdiet",
	Short:         "Submit dog diet questionnaires, update breeds and chat with the nutrition assistant",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appConfig = cfg
		setup(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests at debug level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dogdiet/config.json)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(breedCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
}

// setup applies output and logging settings.
func setup(cfg config.Config) {
	console.SetNoColor(noColor || cfg.UI.NoColor)

	level := cfg.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// The flow already told the user what went wrong.
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(exitCode(err))
	}
}
