// Package live 回放执行循环测试
package live

import (
	"context"
	"math"
	"testing"

	"latency-arb-scanner/internal/config"
	"latency-arb-scanner/internal/core/model"
	"latency-arb-scanner/internal/replay"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestRunner_ShortRoundTrip 验证一次完整的空头进出场：
// X 交易所挂出卖价 10 后，Y 交易所买价 12 形成可交叉价差（进场），
// 买价回落至 9.5 后价差回归（以本行 A 方向报价 10.2 平仓）。
func TestRunner_ShortRoundTrip(t *testing.T) {
	table := &model.Table{Rows: []model.Row{
		{Timestamp: 93000000, ExchangeA: "X", PriceA: -10, PriceB: model.NaN(), QuantityA: 10, QuantityB: model.NaN()},
		{Timestamp: 93000100, ExchangeB: "Y", PriceA: model.NaN(), PriceB: 12, QuantityA: model.NaN(), QuantityB: 20},
		{Timestamp: 93000200, ExchangeB: "Y", PriceA: -10.2, PriceB: 9.5, QuantityA: 5, QuantityB: 5},
	}}

	r := NewRunner(config.EngineConfig{TransactionFee: 0.5}, nil)
	var events []Event
	err := r.Run(context.Background(), replay.NewFeed(table), func(ev Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Run 失败: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("事件数=%d, want 3", len(events))
	}

	if events[0].Action != "hold" || events[0].Position != 0 {
		t.Errorf("首行应为 hold: %+v", events[0])
	}
	if events[0].Clock != "09:30:00.000" {
		t.Errorf("Clock=%s", events[0].Clock)
	}

	if events[1].Action != "enter_short" || events[1].Position != -1 {
		t.Errorf("第二行应空头进场: %+v", events[1])
	}
	if events[1].Price != 12 {
		t.Errorf("进场价=%v, want 12", events[1].Price)
	}
	// 对侧报价不可得，盯市退回入场价，未实现盈亏为 0
	if events[1].PnL != 0 {
		t.Errorf("进场行 PnL=%v, want 0", events[1].PnL)
	}

	if events[2].Action != "exit" || events[2].Position != 0 {
		t.Errorf("第三行应平仓: %+v", events[2])
	}
	if !almostEqual(events[2].Price, 10.2) {
		t.Errorf("平仓价=%v, want 10.2", events[2].Price)
	}
	// pnl = (10.2 - 12) × (-1) - 0.5 = 1.3
	if !almostEqual(events[2].PnL, 1.3) {
		t.Errorf("平仓行 PnL=%v, want 1.3", events[2].PnL)
	}
	if !almostEqual(r.Engine().RealizedPnL(), 1.3) {
		t.Errorf("已实现盈亏=%v, want 1.3", r.Engine().RealizedPnL())
	}
}

// TestRunner_LongEntry 验证 A 方向可交叉价差触发多头进场。
func TestRunner_LongEntry(t *testing.T) {
	table := &model.Table{Rows: []model.Row{
		{Timestamp: 93000000, ExchangeB: "Y", PriceA: model.NaN(), PriceB: 10, QuantityA: model.NaN(), QuantityB: 15},
		{Timestamp: 93000100, ExchangeA: "X", PriceA: -9.6, PriceB: model.NaN(), QuantityA: 15, QuantityB: model.NaN()},
	}}

	r := NewRunner(config.EngineConfig{TransactionFee: 0.5}, nil)
	var events []Event
	if err := r.Run(context.Background(), replay.NewFeed(table), func(ev Event) {
		events = append(events, ev)
	}); err != nil {
		t.Fatalf("Run 失败: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("事件数=%d, want 2", len(events))
	}
	// X 卖价 9.6 与 Y 陈旧买价 10 可交叉: -9.6 + 10 = 0.4 > 0
	if events[1].Action != "enter_long" || events[1].Position != 1 {
		t.Errorf("应多头进场: %+v", events[1])
	}
	if !almostEqual(events[1].Price, 9.6) {
		t.Errorf("进场价=%v, want 9.6", events[1].Price)
	}
}

// TestRunner_NoEdgeNoEntry 价差始终为负时不进场。
func TestRunner_NoEdgeNoEntry(t *testing.T) {
	table := &model.Table{Rows: []model.Row{
		{Timestamp: 93000000, ExchangeA: "X", PriceA: -10, PriceB: model.NaN(), QuantityA: 10, QuantityB: model.NaN()},
		{Timestamp: 93000100, ExchangeB: "Y", PriceA: model.NaN(), PriceB: 9.9, QuantityA: model.NaN(), QuantityB: 10},
	}}

	r := NewRunner(config.EngineConfig{}, nil)
	if err := r.Run(context.Background(), replay.NewFeed(table), func(ev Event) {
		if ev.Action != "hold" {
			t.Errorf("不应进场: %+v", ev)
		}
	}); err != nil {
		t.Fatalf("Run 失败: %v", err)
	}
	if !r.Engine().IsFlat() {
		t.Errorf("应保持空仓")
	}
}

// TestRunner_ExitDeferredWhenPriceMissing 价差回归但平仓价缺失时持仓不动。
func TestRunner_ExitDeferredWhenPriceMissing(t *testing.T) {
	table := &model.Table{Rows: []model.Row{
		{Timestamp: 93000000, ExchangeA: "X", PriceA: -10, PriceB: model.NaN(), QuantityA: 10, QuantityB: model.NaN()},
		{Timestamp: 93000100, ExchangeB: "Y", PriceA: model.NaN(), PriceB: 12, QuantityA: model.NaN(), QuantityB: 20},
		// 价差回归但 A 方向报价缺失，无法定平仓价
		{Timestamp: 93000200, ExchangeB: "Y", PriceA: model.NaN(), PriceB: 9.5, QuantityA: model.NaN(), QuantityB: 5},
	}}

	r := NewRunner(config.EngineConfig{TransactionFee: 0.5}, nil)
	var last Event
	if err := r.Run(context.Background(), replay.NewFeed(table), func(ev Event) {
		last = ev
	}); err != nil {
		t.Fatalf("Run 失败: %v", err)
	}

	if last.Action != "hold" || last.Position != -1 {
		t.Errorf("平仓价缺失应继续持仓: %+v", last)
	}
}

func TestRunner_ContextCancelled(t *testing.T) {
	table := &model.Table{Rows: []model.Row{
		{Timestamp: 93000000, ExchangeA: "X", PriceA: -10, PriceB: model.NaN()},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(config.EngineConfig{}, nil)
	feed := replay.NewFeed(table)
	if err := r.Run(ctx, feed, nil); err != context.Canceled {
		t.Fatalf("取消后应返回 context.Canceled, got %v", err)
	}
	if feed.Remaining() != 1 {
		t.Errorf("取消后不应消费回放: Remaining=%d", feed.Remaining())
	}
}
