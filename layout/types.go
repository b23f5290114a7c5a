package layout

// 该文件定义布局结果与行段描述，供排版、渲染与调试 JSON 共用。

// LineSegment 是文档中的一行，[Start, End) 为半开的字符（rune）区间。
type LineSegment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len 返回该行包含的字符数。
func (s LineSegment) Len() int { return s.End - s.Start }

// Metrics 为一次测量时捕获的字体度量，绘制阶段沿用同一份快照。
// Ascent 为上升部的绝对值。
type Metrics struct {
	Ascent      float64 `json:"ascent"`
	Descent     float64 `json:"descent"`
	LineSpacing float64 `json:"lineSpacing"`
}

// LineHeight 返回单行文本高度（不含行间距）。
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent }

// Size 是测量阶段给出的最终宽高。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Padding 与边距共用同一结构，单位由排版后端决定（PDF 为 mm，终端为字符格）。
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Margin 为页面边距。
type Margin = Padding

// Result 保存排版后的页面与文档信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸、边距以及已经定位好的文本块。
// Height 为 0 表示页面高度不受限（终端输出）。
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
	Blocks []Block `json:"blocks"`
}

// Block 是页面上的一个已测量视图，坐标为页面坐标。
type Block struct {
	Name   string   `json:"name"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	View   *View    `json:"-"`
	State  Snapshot `json:"state"`
}

// Snapshot 是视图在一次测量之后的只读状态，用于调试输出。
type Snapshot struct {
	Text          string        `json:"text"`
	Segments      []LineSegment `json:"segments"`
	MaxLines      int           `json:"maxLines"`
	DrawLineCount int           `json:"drawLineCount"`
	Expanded      bool          `json:"expanded"`
	Ellipsized    bool          `json:"ellipsized"`
	Metrics       Metrics       `json:"metrics"`
	Size          Size          `json:"size"`
}

// DocumentMeta 保存文档元信息（PDF Info）。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
