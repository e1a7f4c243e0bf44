package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gamatrix/internal"
	"gamatrix/internal/di"
	"gamatrix/internal/structures"

	"github.com/spf13/cobra"
)

var flags structures.CliFlags

var rootCmd = &cobra.Command{
	Use:   "gamatrix",
	Short: "Compare game libraries across a group of friends",
	Long: `gamatrix collects each user's GOG Galaxy library database into one shared
catalog and answers which games a group owns in common.

Run "gamatrix serve" for the web API, or use the maintenance commands to
build, inspect and repair the data store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "Verbose logging")
}

// tooling loads the config and the data store for a one-shot command.
func tooling() (*internal.Tooling, error) {
	t, err := di.InitTooling(&flags)
	if err != nil {
		return nil, err
	}
	t.Catalog.Restore()
	return t, nil
}

func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
