package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		back := Length{Value: pt, Unit: UnitPT}.ToMM() * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
	for _, mm := range samples {
		back := MM(mm).ToPT() * PtToMm
		if diff := math.Abs(back - mm); diff > 1e-9 {
			t.Fatalf("mm→pt→mm 往返误差过大: in=%gmm back=%g diff=%g", mm, back, diff)
		}
	}
}

// TestLengthConversions 覆盖常见单位到 mm/pt 的换算。
func TestLengthConversions(t *testing.T) {
	cases := []struct {
		in     Length
		wantMM float64
	}{
		{Length{Value: 1, Unit: UnitIN}, 25.4},
		{Length{Value: 2.54, Unit: UnitCM}, 25.4},
		{Length{Value: 96, Unit: UnitPX}, 25.4},
		{Pt(12), 12 * PtToMm},
		{Length{Value: 7}, 7},
	}
	for _, c := range cases {
		if got := c.in.ToMM(); math.Abs(got-c.wantMM) > 1e-9 {
			t.Fatalf("%s 转 mm 期望 %g，实际 %g", c.in, c.wantMM, got)
		}
	}
	if got := (Length{Value: 11}).ToPT(); got != 11 {
		t.Fatalf("无单位数值按 pt 处理，实际 %g", got)
	}
}

func TestParseLength(t *testing.T) {
	cases := map[string]Length{
		"12pt":   Pt(12),
		" 4.5MM": MM(4.5),
		"1in":    {Value: 1, Unit: UnitIN},
		"3":      {Value: 3},
		"2px":    {Value: 2, Unit: UnitPX},
	}
	for in, want := range cases {
		got, err := ParseLength(in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", in, err)
		}
		if got != want {
			t.Fatalf("解析 %q: got=%+v want=%+v", in, got, want)
		}
	}
	for _, bad := range []string{"", "pt", "abc", "1..2mm", "NaN", "inf", "-Inf", "NaNmm"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("期望 %q 解析失败", bad)
		}
	}
}
