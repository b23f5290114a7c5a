package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

type debugBlock struct {
	Block
	Drawn []string `json:"drawn"`
}

type debugPage struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Margin Margin       `json:"margin"`
	Blocks []debugBlock `json:"blocks"`
}

// DebugJSON 将布局结果连同每个视图实际绘制的行序列化为 JSON。
func DebugJSON(res *Result) ([]byte, error) {
	if res == nil {
		return []byte("null"), nil
	}
	out := struct {
		Meta  DocumentMeta `json:"meta"`
		Pages []debugPage  `json:"pages"`
	}{Meta: res.Meta}
	for _, p := range res.Pages {
		dp := debugPage{Width: p.Width, Height: p.Height, Margin: p.Margin}
		for _, b := range p.Blocks {
			db := debugBlock{Block: b}
			if b.View != nil {
				rec := &recordingSink{}
				if err := b.View.Draw(rec, b.Width, b.Height); err != nil {
					return nil, fmt.Errorf("视图 %s: %w", b.Name, err)
				}
				db.Drawn = rec.lines
			}
			dp.Blocks = append(dp.Blocks, db)
		}
		out.Pages = append(out.Pages, dp)
	}
	return json.MarshalIndent(out, "", "  ")
}

// WriteDebugJSON 将布局结果输出为 JSON 文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	data, err := DebugJSON(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
