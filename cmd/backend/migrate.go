package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/replaykit/replaykit/logger"
)

var migrateConfigFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the scenario store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(migrateConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Database.Driver == "" || cfg.Database.Driver == "memory" {
			return fmt.Errorf("database driver %q has no schema to migrate", cfg.Database.Driver)
		}

		log := logger.NewLogrusLogger(cfg.Log.Level)
		_, closeStore, err := openScenarioStore(cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		fmt.Println("Migrations applied successfully")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateConfigFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(migrateCmd)
}
