// Package commands implements the CLI subcommands for the tagwatch binary.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/tagwatch/internal/config"
	intlambda "github.com/dwsmith1983/tagwatch/internal/lambda"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Persistent flag names registered by AddGlobalFlags.
const (
	flagConfig  = "config"
	flagEnvFile = "env-file"
	flagMemory  = "memory"
)

// AddGlobalFlags registers the flags shared by every subcommand.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String(flagConfig, ".", "directory containing "+config.FileName)
	root.PersistentFlags().String(flagEnvFile, ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().Bool(flagMemory, false, "use the in-memory store instead of DynamoDB")
}

// loadConfig reads the dotenv file, tagwatch.yaml when present, and the
// environment, in that order of increasing precedence.
func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	if envFile, _ := cmd.Flags().GetString(flagEnvFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	dir, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.Load(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	config.ApplyEnv(cfg, os.Getenv)
	if mem, _ := cmd.Flags().GetBool(flagMemory); mem {
		cfg.Store.Backend = types.StoreMemory
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LogLevel(level),
	}))
}

// buildDeps wires the same dependency graph the Lambdas use.
func buildDeps(ctx context.Context, cmd *cobra.Command) (*intlambda.Deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return intlambda.Build(ctx, cfg, newLogger(cfg.LogLevel), intlambda.Options{})
}

func closeDeps(ctx context.Context, d *intlambda.Deps) {
	_ = d.Telemetry.Shutdown(ctx)
	_ = d.Provider.Stop(ctx)
}
