package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/ellipsis/config"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "排版文档并输出 PDF 或文本",
	Example: `  ellipsis render examples/card.ellipsis -o card.pdf
  ellipsis render examples/card.ellipsis -f text --data '{"user":{"name":"Ann"}}'`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringP("out", "o", "", "输出路径，- 表示标准输出（pdf 默认与输入同名，text 默认标准输出）")
	f.String("data", "", "绑定到 DSL 的 JSON 数据")
	f.String("data-file", "", "绑定到 DSL 的 JSON 数据文件")
	f.String("debug", "", "布局调试 JSON 输出路径")
	f.Bool("expand", false, "展开全部视图，不截断")
}

func runRender(cmd *cobra.Command, args []string) error {
	input := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	out, _ := flags.GetString("out")
	inline, _ := flags.GetString("data")
	dataFile, _ := flags.GetString("data-file")
	debugPath, _ := flags.GetString("debug")
	expand, _ := flags.GetBool("expand")

	data, err := parseData(inline, dataFile)
	if err != nil {
		return err
	}

	backend := newBackend(cfg, input)
	result, err := buildDocument(input, cfg, backend, data, expand)
	if err != nil {
		return err
	}
	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	output, err := backend.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}

	if out == "" {
		out = defaultOutput(input, cfg.Format)
	}
	if out == "-" {
		_, err := cmd.OutOrStdout().Write(output)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(out, output, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	logger.Info("rendered", "format", cfg.Format, "out", out, "bytes", len(output))
	fmt.Fprintf(cmd.ErrOrStderr(), "已生成 %s：%s\n", strings.ToUpper(cfg.Format), out)
	return nil
}

// defaultOutput 为 PDF 生成与输入同名的输出路径，文本输出到标准输出。
func defaultOutput(input, format string) string {
	if format == config.FormatText {
		return "-"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
}
