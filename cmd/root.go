package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ByLCY/ellipsis/config"
)

// localConfig 优先于用户目录下的配置文件。
const localConfig = ".ellipsis.yaml"

var (
	version   = "dev"
	cfgFile   string
	verbose   bool
	configErr error
	logger    = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "ellipsis",
	Short: "多行文本排版：限制行数并在末行添加省略号",
	Long: `ellipsis 读取 .ellipsis 文档，按宽度逐字符断行，限制每个视图的最大行数，
并在被截断的最后一行末尾添加省略号，输出 PDF 或终端文本。`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger = newLogger(cmd.ErrOrStderr(), verbose)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "",
		"配置文件（默认 ./.ellipsis.yaml 或 ~/.config/ellipsis/config.yaml）")
	pf.BoolVarP(&verbose, "verbose", "v", false, "输出排版过程日志")
	pf.StringP("format", "f", "", "输出格式：pdf 或 text")
	pf.Int("columns", 0, "text 输出的列宽")
	pf.Bool("no-color", false, "text 输出不使用颜色")
	pf.Int("max-lines", 0, "视图默认最大行数")
	pf.String("font-dir", "", "字体文件目录（默认为文档所在目录）")

	rootCmd.AddCommand(renderCmd, inspectCmd, initConfigCmd)
	bindFlags()
}

// bindFlags 把命令行参数绑定到 viper 配置键。
func bindFlags() {
	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("format", pf.Lookup("format"))
	_ = viper.BindPFlag("term.columns", pf.Lookup("columns"))
	_ = viper.BindPFlag("term.no_color", pf.Lookup("no-color"))
	_ = viper.BindPFlag("view.max_lines", pf.Lookup("max-lines"))
	_ = viper.BindPFlag("font_dir", pf.Lookup("font-dir"))
}

func initConfig() {
	config.SetDefaults()
	configErr = nil

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(localConfig); err == nil {
		viper.SetConfigFile(localConfig)
	} else {
		viper.AddConfigPath(config.ConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// ELLIPSIS_VIEW_MAX_LINES 对应 view.max_lines
	viper.SetEnvPrefix("ELLIPSIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("读取配置文件失败: %w", err)
		}
	}
}

// loadConfig 返回合并了默认值、配置文件、环境变量与命令行参数后的配置。
func loadConfig() (config.Config, error) {
	if configErr != nil {
		return config.Config{}, configErr
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("配置无效: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "path", used)
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
