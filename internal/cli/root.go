package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avlund/tend/internal/config"
	"github.com/avlund/tend/internal/engine"
	"github.com/avlund/tend/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tend",
	Short: "Keep friendships from fading",
	Long:  "Tend tracks the health of your relationships: scores decay day by day without contact, logged interactions boost them, and neglected friends turn into ghosts until you reach out again.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(decayCmd)
}

// loadConfig resolves the config path (TEND_CONFIG or ~/.tend/config.yaml)
// and loads the effective configuration.
func loadConfig() (config.Config, error) {
	path := os.Getenv("TEND_CONFIG")
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// openEngine opens the database and builds an engine from the configuration.
// Callers must Close the returned store.
func openEngine() (*engine.Engine, *store.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	tn, err := cfg.HealthTuning()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return engine.New(db, tn), db, nil
}
