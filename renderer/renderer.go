package renderer

import "github.com/ByLCY/ellipsis/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF 或终端文本。
// Render 返回生成的数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时提供文本度量与输出能力，供命令行按格式选择。
type Backend interface {
	layout.Typesetter
	Renderer
}
