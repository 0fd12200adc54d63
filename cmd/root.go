package cmd

import (
	"skillquest_backend/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillquest",
	Short: "SkillQuest progression backend",
	Long:  "SkillQuest 自适应学习平台后端：等级、连续学习天数、XP 与每日目标。",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, false)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs", "配置文件目录（包含 config.yaml）")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig 读取 --config 指定目录下的配置
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, dir, err
	}
	return cfg, dir, nil
}
