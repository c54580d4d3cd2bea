package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/almanac/internal/paths"
	"github.com/mesh-intelligence/almanac/internal/sqlite"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize almanac storage",
		Long: "Write a default config.yaml if none exists, then create the database\n" +
			"file and its tables.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	s, err := a.settings()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, configFileExt)
	wrote, err := writeConfigIfMissing(configPath, defaultConfigFile(s.Store.DataDir))
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if wrote {
		a.logger.Info("wrote default config", zap.String("path", configPath))
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(s.Store); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer backend.Detach()

	if err := backend.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	a.logger.Info("schema ready", zap.String("database", backend.Path()))

	fmt.Fprintf(cmd.OutOrStdout(), "Almanac initialized at %s\n", backend.Path())
	return nil
}
