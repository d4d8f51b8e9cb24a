// hellojane CLI: migraciones y seed del catálogo geográfico.
//
// La librería de identidad la consume un front end web; este binario solo
// cubre las tareas operativas de la base.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojane/internal/config"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

func main() {
	_ = godotenv.Load(".env")     // base
	_ = godotenv.Load(".env.dev") // dev overrides

	var configPath string

	root := &cobra.Command{
		Use:           "hellojane",
		Short:         "Operational tooling for the hellojane identity store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to YAML config")

	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newSeedGeoCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "hellojane",
	})
	return cfg, nil
}
