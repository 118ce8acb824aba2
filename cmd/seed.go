/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"

	"github.com/mautops/timesheet-gin/internal/api"
	"github.com/mautops/timesheet-gin/internal/container"
	"github.com/mautops/timesheet-gin/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load directory seed data",
	Long: `Load users, clients, projects, tasks and assignments into the database.
Without --file the built-in demo data set is loaded. Existing users,
clients and projects are left untouched, so the command can be re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := api.InitLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		ctx := context.Background()
		file, _ := cmd.Flags().GetString("file")

		var result *service.SeedResult
		if file != "" {
			result, err = ctr.SeedService().SeedFile(ctx, file)
		} else {
			result, err = ctr.SeedService().SeedDefault(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"users":    result.UsersCreated,
			"clients":  result.ClientsCreated,
			"projects": result.ProjectsCreated,
			"tasks":    result.TasksCreated,
		}).Info("seed data loaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("file", "", "YAML seed file (default: built-in demo data)")
}
