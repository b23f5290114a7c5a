package layout

// pageCollector 负责自上而下排布视图，空间不足时换页。
type pageCollector struct {
	opts    PageOptions
	all     []Page
	cursorY float64
}

func newPageCollector(opts PageOptions) *pageCollector {
	pc := &pageCollector{opts: opts}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *Page {
	pc.all = append(pc.all, Page{
		Width:  pc.opts.Width,
		Height: pc.opts.Height,
		Margin: pc.opts.Margin,
	})
	pc.cursorY = pc.contentTop()
	return pc.curr()
}

func (pc *pageCollector) curr() *Page {
	return &pc.all[len(pc.all)-1]
}

func (pc *pageCollector) contentTop() float64 { return pc.opts.Margin.Top }

func (pc *pageCollector) contentWidth() float64 {
	return pc.opts.Width - pc.opts.Margin.Left - pc.opts.Margin.Right
}

func (pc *pageCollector) bounded() bool { return pc.opts.Height > 0 }

func (pc *pageCollector) contentBottom() float64 {
	return pc.opts.Height - pc.opts.Margin.Bottom
}

// place 测量视图并放到当前页；当前页已有内容且放不下时先换页。
// 高于整页内容区的视图按剩余空间截断，绘制时超出的行被裁掉。
func (pc *pageCollector) place(name string, v *View, width float64, notify func(*View)) error {
	measure := func(height MeasureSpec) (Size, error) {
		if notify != nil {
			v.SetOnMeasureDone(notify)
		}
		return v.Measure(ExactlySpec(width), height)
	}

	size, err := measure(UnspecifiedSpec())
	if err != nil {
		return err
	}
	if pc.bounded() {
		if pc.cursorY+size.Height > pc.contentBottom() && len(pc.curr().Blocks) > 0 {
			pc.newPage()
		}
		if remaining := pc.contentBottom() - pc.cursorY; size.Height > remaining {
			if remaining < 0 {
				remaining = 0
			}
			if size, err = measure(AtMostSpec(remaining)); err != nil {
				return err
			}
		}
	}

	page := pc.curr()
	page.Blocks = append(page.Blocks, Block{
		Name:   name,
		X:      pc.opts.Margin.Left,
		Y:      pc.cursorY,
		Width:  size.Width,
		Height: size.Height,
		View:   v,
		State:  v.Snapshot(),
	})
	pc.cursorY += size.Height + pc.opts.Gap
	return nil
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.all))
	copy(out, pc.all)
	return out
}
