// Package main implements the gridws CLI: it serves the workspace API and
// maintains the workspace store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gridworkspaces/internal/config"
	"gridworkspaces/internal/logging"
)

var Version string = "0.1.0"

var (
	configPath string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:               "gridws",
	Short:             "Grid workspaces: panels, layouts and their diagram configurations",
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (.yaml, .yml or .toml)")
}

func main() {
	defer func() {
		_ = logger.Sync()
	}()

	// Panic guard to log stacktrace if app crashes
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic: application crashed",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			os.Exit(1)
		}
	}()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}

// loadConfig runs before every command: it loads and validates the
// configuration and builds the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	l, err := logging.New(loaded.LogLevel)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l.With(zap.String("version", Version))
	return nil
}
