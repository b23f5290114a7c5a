package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ByLCY/ellipsis/layout"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "输出布局调试 JSON（行段、绘制行数、省略状态与实际绘制文本）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		inline, _ := flags.GetString("data")
		dataFile, _ := flags.GetString("data-file")
		expand, _ := flags.GetBool("expand")

		data, err := parseData(inline, dataFile)
		if err != nil {
			return err
		}
		result, err := buildDocument(args[0], cfg, newBackend(cfg, args[0]), data, expand)
		if err != nil {
			return err
		}
		raw, err := layout.DebugJSON(result)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if _, err := out.Write(raw); err != nil {
			return err
		}
		_, err = out.Write([]byte("\n"))
		return err
	},
}

func init() {
	f := inspectCmd.Flags()
	f.String("data", "", "绑定到 DSL 的 JSON 数据")
	f.String("data-file", "", "绑定到 DSL 的 JSON 数据文件")
	f.Bool("expand", false, "展开全部视图，不截断")
}
