package cmd

import (
	"fmt"

	"skillquest_backend/internal/app"
	"skillquest_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "只执行数据库迁移，完成后退出",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg.ForceMigrate = true
		cfg.MigrateOnly = true

		application, err := app.NewApp(cfg)
		if err != nil {
			return err
		}
		defer application.Close()
		defer logger.Log.Sync()

		logger.Log.Info("数据库迁移完成，退出程序")
		return nil
	},
}
