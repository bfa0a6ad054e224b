// Package timeutil 时间编码工具测试
package timeutil

import (
	"testing"
)

func TestValid(t *testing.T) {
	cases := []struct {
		ts   int64
		want bool
	}{
		{93000000, true},   // 09:30:00.000
		{160000000, true},  // 16:00:00.000
		{0, true},          // 00:00:00.000
		{235959999, true},  // 23:59:59.999
		{240000000, false}, // 小时越界
		{96000000, false},  // 分钟越界
		{93060000, false},  // 秒越界
		{-1, false},
	}
	for _, c := range cases {
		if got := Valid(c.ts); got != c.want {
			t.Fatalf("Valid(%d)=%v, want %v", c.ts, got, c.want)
		}
	}
}

func TestToMillisOfDayRoundTrip(t *testing.T) {
	cases := []int64{0, 93000000, 120530250, 160000000, 235959999}
	for _, ts := range cases {
		ms := ToMillisOfDay(ts)
		if back := FromMillisOfDay(ms); back != ts {
			t.Fatalf("往返失败: %d → %d → %d", ts, ms, back)
		}
	}

	// 09:30:00.000 = (9×3600 + 30×60) × 1000 ms
	if ms := ToMillisOfDay(93000000); ms != 34200000 {
		t.Fatalf("ToMillisOfDay(93000000)=%d, want 34200000", ms)
	}
}

func TestDiffMs(t *testing.T) {
	// 09:30:00.000 → 09:30:01.500 = 1500ms
	if d := DiffMs(93000000, 93001500); d != 1500 {
		t.Fatalf("DiffMs=%d, want 1500", d)
	}
	// 跨分钟: 09:30:59.900 → 09:31:00.100 = 200ms
	if d := DiffMs(93059900, 93100100); d != 200 {
		t.Fatalf("跨分钟 DiffMs=%d, want 200", d)
	}
}

func TestFormat(t *testing.T) {
	if s := Format(93000000); s != "09:30:00.000" {
		t.Fatalf("Format=%s, want 09:30:00.000", s)
	}
	if s := Format(160000001); s != "16:00:00.001" {
		t.Fatalf("Format=%s, want 16:00:00.001", s)
	}
}
