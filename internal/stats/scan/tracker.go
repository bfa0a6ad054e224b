// Package scan 实现信号扫描结果的滚动统计。
// 跟踪净价差与运行段持续行数的分位数、按交易所的信号计数，
// 用于 metrics JSONL 快照与推送服务的状态查询。
package scan

import (
	"sort"

	"latency-arb-scanner/internal/core/model"
)

// Stats 扫描统计快照
type Stats struct {
	// Count 信号总数
	Count int64 `json:"count"`
	// ByExchange 按当前交易所的信号计数
	ByExchange map[string]int64 `json:"by_exchange,omitempty"`

	// EdgeP50 净价差 P50
	EdgeP50 float64 `json:"edge_p50"`
	// EdgeP90 净价差 P90
	EdgeP90 float64 `json:"edge_p90"`
	// EdgeMax 净价差最大值
	EdgeMax float64 `json:"edge_max"`

	// DurationP50 持续行数 P50
	DurationP50 float64 `json:"duration_p50"`
	// DurationP90 持续行数 P90
	DurationP90 float64 `json:"duration_p90"`

	// QuantityTotal 触发方向累计数量合计
	QuantityTotal float64 `json:"quantity_total"`
}

type rollingWindow struct {
	size int
	buf  []float64
	pos  int
	full bool
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{size: size, buf: make([]float64, 0, size)}
}

func (w *rollingWindow) add(v float64) {
	if w.size <= 0 {
		return
	}
	if !w.full {
		w.buf = append(w.buf, v)
		if len(w.buf) == w.size {
			w.full = true
			w.pos = 0
		}
		return
	}
	w.buf[w.pos] = v
	w.pos++
	if w.pos >= w.size {
		w.pos = 0
	}
}

func (w *rollingWindow) quantiles(qs ...float64) []float64 {
	out := make([]float64, len(qs))
	if len(w.buf) == 0 {
		return out
	}

	tmp := make([]float64, len(w.buf))
	copy(tmp, w.buf)
	sort.Float64s(tmp)

	n := len(tmp)
	for i, q := range qs {
		if q <= 0 {
			out[i] = tmp[0]
			continue
		}
		if q >= 1 {
			out[i] = tmp[n-1]
			continue
		}
		idx := int(float64(n-1) * q)
		out[i] = tmp[idx]
	}
	return out
}

func (w *rollingWindow) max() float64 {
	var m float64
	for i, v := range w.buf {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Tracker 扫描统计追踪器（单写者）
type Tracker struct {
	// count 信号总数
	count int64
	// byExchange 按交易所计数
	byExchange map[string]int64
	// edges 净价差滚动窗口
	edges *rollingWindow
	// durations 持续行数滚动窗口
	durations *rollingWindow
	// quantityTotal 触发数量合计
	quantityTotal float64
}

// NewTracker 创建扫描统计追踪器
// 参数 windowSize: 分位数滚动窗口大小（建议 10000）
func NewTracker(windowSize int) *Tracker {
	if windowSize <= 0 {
		windowSize = 10000
	}
	return &Tracker{
		byExchange: make(map[string]int64),
		edges:      newRollingWindow(windowSize),
		durations:  newRollingWindow(windowSize),
	}
}

// Add 记录一条信号
func (t *Tracker) Add(key model.SignalKey, stats model.SignalStats) {
	t.count++
	t.byExchange[key.Exchange]++
	t.edges.add(stats.Edge)
	t.durations.add(float64(stats.Duration))
	if !model.IsMissing(stats.Quantity) {
		t.quantityTotal += stats.Quantity
	}
}

// AddSet 记录整个信号集合（按插入顺序）
func (t *Tracker) AddSet(set *model.SignalSet) {
	for _, k := range set.Keys() {
		if v, ok := set.Get(k); ok {
			t.Add(k, v)
		}
	}
}

// Stats 获取当前统计快照
func (t *Tracker) Stats() Stats {
	out := Stats{
		Count:         t.count,
		QuantityTotal: t.quantityTotal,
	}
	if t.count == 0 {
		return out
	}

	out.ByExchange = make(map[string]int64, len(t.byExchange))
	for k, v := range t.byExchange {
		out.ByExchange[k] = v
	}

	edgeQs := t.edges.quantiles(0.50, 0.90)
	out.EdgeP50 = edgeQs[0]
	out.EdgeP90 = edgeQs[1]
	out.EdgeMax = t.edges.max()

	durQs := t.durations.quantiles(0.50, 0.90)
	out.DurationP50 = durQs[0]
	out.DurationP90 = durQs[1]

	return out
}
