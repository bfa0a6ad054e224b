// Package live 实现基于回放迭代器的逐行模拟执行循环。
// 消费前缀回放、维护最近价格映射、驱动模拟交易引擎进出场，
// 并在每行之后报告当前盈亏。仅为研究用途的外围组件，
// 检测器不依赖本包。
package live

import (
	"context"

	"go.uber.org/zap"

	"latency-arb-scanner/internal/config"
	"latency-arb-scanner/internal/core/model"
	"latency-arb-scanner/internal/core/store"
	"latency-arb-scanner/internal/core/trade"
	"latency-arb-scanner/internal/replay"
	"latency-arb-scanner/internal/util/timeutil"
)

// Event 回放执行事件
// 每处理一行产出一条，用于 JSONL 输出与 WebSocket 推送
type Event struct {
	// Timestamp 行时间戳（HHMMSSmmm）
	Timestamp int64 `json:"ts"`
	// Clock 可读时间 HH:MM:SS.mmm
	Clock string `json:"clock"`
	// Action 本行动作: enter_long, enter_short, exit, hold
	Action string `json:"action"`
	// Price 动作成交价（hold 时为 0）
	Price float64 `json:"price,omitempty"`
	// Position 本行之后的仓位: -1, 0, +1
	Position int `json:"position"`
	// PnL 当前盈亏（已实现 + 持仓盯市）
	PnL float64 `json:"pnl"`
}

// Runner 回放执行器
// 进场条件与检测器同源：本行报价与其他交易所对侧陈旧报价
// 相加为正（A 方向价格已取反）即存在可交叉的价差。
// 价差回归（不再为正）时平仓。
type Runner struct {
	// engine 模拟交易引擎
	engine *trade.Engine
	// latest 最近价格映射（回放过程持续累积）
	latest *store.LatestPrices
	// logger 日志
	logger *zap.Logger
	// openSide 持仓触发方向，空仓时无意义
	openSide model.Side
}

// NewRunner 创建回放执行器
// 参数 cfg: 模拟交易引擎配置
func NewRunner(cfg config.EngineConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		engine: trade.New(cfg),
		latest: store.New(),
		logger: logger,
	}
}

// Engine 获取底层模拟交易引擎（只读用途）
func (r *Runner) Engine() *trade.Engine {
	return r.engine
}

// Run 消费回放迭代器直至耗尽
// 每行调用一次 onEvent（非 nil 时）；ctx 取消后提前返回。
func (r *Runner) Run(ctx context.Context, feed *replay.Feed, onEvent func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		prefix, ok := feed.Next()
		if !ok {
			return nil
		}

		ev := r.step(prefix.Last())
		if onEvent != nil {
			onEvent(ev)
		}
	}
}

// step 处理单行：更新最近价格、尝试进出场、报告盈亏
func (r *Runner) step(row *model.Row) Event {
	currentEx := row.ExchangeB
	if currentEx == "" {
		currentEx = row.ExchangeA
	}
	r.latest.Update(currentEx, model.SideA, row.PriceA)
	r.latest.Update(currentEx, model.SideB, row.PriceB)

	ev := Event{
		Timestamp: row.Timestamp,
		Clock:     timeutil.Format(row.Timestamp),
		Action:    "hold",
	}

	if r.engine.IsFlat() {
		// A 方向：本行卖价（取反存储）+ 他处最高买价 > 0 → 买 A 卖他处
		if edge, ok := r.crossEdge(row, currentEx, model.SideA); ok && edge > 0 {
			px := -row.PriceA // 还原真实卖价
			r.engine.Enter(px, trade.DirectionLong)
			r.openSide = model.SideA
			ev.Action = "enter_long"
			ev.Price = px
		} else if edge, ok := r.crossEdge(row, currentEx, model.SideB); ok && edge > 0 {
			px := row.PriceB
			r.engine.Enter(px, trade.DirectionShort)
			r.openSide = model.SideB
			ev.Action = "enter_short"
			ev.Price = px
		}
	} else {
		// 价差回归后平仓；平仓价取持仓对侧的本行报价
		edge, ok := r.crossEdge(row, currentEx, r.openSide)
		if !ok || edge <= 0 {
			if px, has := r.exitPrice(row); has {
				r.engine.Exit(px)
				ev.Action = "exit"
				ev.Price = px
			}
		}
	}

	ev.Position = r.engine.Position()
	ev.PnL = r.engine.CurrentPnL(r.markPrice(row))
	return ev
}

// crossEdge 计算指定方向与其他交易所对侧陈旧报价的可交叉价差
// A 方向取对侧最大值，B 方向取对侧最小值；比较价不可得返回 false。
func (r *Runner) crossEdge(row *model.Row, currentEx string, side model.Side) (float64, bool) {
	own := row.Price(side)
	if model.IsMissing(own) {
		return 0, false
	}

	stale := model.NaN()
	for _, e := range r.latest.OppositeOf(side.Opposite(), currentEx) {
		if model.IsMissing(e.Price) {
			continue
		}
		if model.IsMissing(stale) ||
			(side == model.SideA && e.Price > stale) ||
			(side == model.SideB && e.Price < stale) {
			stale = e.Price
		}
	}
	if model.IsMissing(stale) {
		return 0, false
	}
	return own + stale, true
}

// exitPrice 获取平仓价
// 多头（A 方向进场）以本行 B 方向价格离场，空头反之。
func (r *Runner) exitPrice(row *model.Row) (float64, bool) {
	if r.openSide == model.SideA {
		if model.IsMissing(row.PriceB) {
			return 0, false
		}
		return row.PriceB, true
	}
	if model.IsMissing(row.PriceA) {
		return 0, false
	}
	return -row.PriceA, true
}

// markPrice 获取盯市价
// 持仓时优先用可平仓价，不可得时退回入场价（未实现盈亏记 0）。
func (r *Runner) markPrice(row *model.Row) float64 {
	if r.engine.IsFlat() {
		return 0
	}
	if px, ok := r.exitPrice(row); ok {
		return px
	}
	return r.engine.EntryPrice()
}
