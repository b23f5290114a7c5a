package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByLCY/ellipsis/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "写出默认配置文件（默认 ./.ellipsis.yaml）",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := localConfig
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s 已存在（使用 --force 覆盖）", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "已写入默认配置：%s\n", path)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().Bool("force", false, "覆盖已存在的文件")
}
