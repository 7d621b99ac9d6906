package main

import (
	"github.com/spf13/cobra"
	"github.com/vaughan-dsouza/postsvc/internal/db"
	"github.com/vaughan-dsouza/postsvc/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the posts schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				conn, err := db.Connect(cmd.Context(), cfg.Database)
				if err != nil {
					return err
				}
				defer conn.Close()
				if err := db.Migrate(cmd.Context(), conn); err != nil {
					return err
				}
				logger.Info("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				conn, err := db.Connect(cmd.Context(), cfg.Database)
				if err != nil {
					return err
				}
				defer conn.Close()
				return db.MigrationStatus(cmd.Context(), conn, cmd.OutOrStdout())
			},
		},
	)
	return cmd
}
