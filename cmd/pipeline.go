package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/ellipsis/config"
	"github.com/ByLCY/ellipsis/dsl"
	"github.com/ByLCY/ellipsis/layout"
	"github.com/ByLCY/ellipsis/renderer"
	canvasrenderer "github.com/ByLCY/ellipsis/renderer/canvas"
	"github.com/ByLCY/ellipsis/renderer/term"
)

// newBackend 按输出格式选择排版与渲染后端。
func newBackend(cfg config.Config, inputPath string) renderer.Backend {
	if cfg.Format == config.FormatText {
		return term.NewRenderer(term.Options{NoColor: cfg.Term.NoColor})
	}
	baseDir := cfg.FontDir
	if baseDir == "" {
		baseDir = filepath.Dir(inputPath)
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Logger: logger})
}

// parseData 解析内联 JSON 或 JSON 文件，二者都为空时返回 nil。
func parseData(inline, path string) (any, error) {
	raw := []byte(inline)
	if path != "" {
		if inline != "" {
			return nil, fmt.Errorf("--data 与 --data-file 不能同时使用")
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}

// buildDocument 串联解析与布局。
func buildDocument(inputPath string, cfg config.Config, ts layout.Typesetter, data any, expand bool) (*layout.Result, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(inputPath, file)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}

	defaults, err := cfg.ViewOptions(ts)
	if err != nil {
		return nil, err
	}
	page, err := cfg.PageOptions(ts)
	if err != nil {
		return nil, err
	}

	result, err := layout.Build(doc, data, layout.BuildOptions{
		Typesetter: ts,
		Defaults:   &defaults,
		Page:       page,
		ExpandAll:  expand,
		OnMeasured: func(name string, v *layout.View) {
			size := v.Size()
			logger.Debug("view measured",
				"view", name,
				"lines", v.LineCount(),
				"drawn", v.DrawLineCount(),
				"expanded", v.IsExpanded(),
				"ellipsized", v.Ellipsized(),
				"width", size.Width,
				"height", size.Height,
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Debug("layout done", "doc", doc.Name, "pages", len(result.Pages))
	return result, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
