// Package trade 实现单合约单位仓位的模拟交易引擎。
// 重要：仅用于研究/回放，严禁真实下单。
package trade

import (
	"latency-arb-scanner/internal/config"
)

// Direction 进场方向
type Direction string

const (
	// DirectionLong 多头进场，仓位记 +1
	DirectionLong Direction = "long"
	// DirectionShort 空头进场，仓位记 -1
	DirectionShort Direction = "short"
)

// Engine 模拟交易引擎
// 仓位取值 -1/0/+1（空头/空仓/多头），单位固定为 1。
// 已知缺陷（保留，不修复）：持仓状态下再次 Enter 会直接覆盖仓位，
// 旧仓的入场价与手续费被静默丢弃，不做轧平。调用方需自行先 Exit。
type Engine struct {
	// position 当前仓位: -1, 0, +1
	position int
	// entryPx 入场价格，空仓时无意义
	entryPx float64
	// realized 累计已实现盈亏
	realized float64
	// fee 每次平仓收取的交易费（价格单位）
	fee float64
}

// New 创建模拟交易引擎
// 参数 cfg: 引擎配置（交易费）
func New(cfg config.EngineConfig) *Engine {
	return &Engine{fee: cfg.TransactionFee}
}

// Enter 按指定价格和方向进场
// 持仓时调用会覆盖现有仓位（见 Engine 的已知缺陷说明）
func (e *Engine) Enter(price float64, dir Direction) {
	if dir == DirectionLong {
		e.position = 1
	} else {
		e.position = -1
	}
	e.entryPx = price
}

// Exit 按指定价格平仓
// 盈亏公式: (exit - entry) × position - fee，累加到已实现盈亏后转为空仓。
// 空仓时调用为空操作。
func (e *Engine) Exit(price float64) {
	if e.position == 0 {
		return
	}
	pnl := (price-e.entryPx)*float64(e.position) - e.fee
	e.realized += pnl
	e.position = 0
	e.entryPx = 0
}

// CurrentPnL 查询当前盈亏
// 空仓返回已实现盈亏；持仓时加上按 currentPrice 盯市的未实现部分。
func (e *Engine) CurrentPnL(currentPrice float64) float64 {
	if e.position == 0 {
		return e.realized
	}
	unrealized := (currentPrice - e.entryPx) * float64(e.position)
	return e.realized + unrealized
}

// Position 获取当前仓位: -1, 0, +1
func (e *Engine) Position() int {
	return e.position
}

// EntryPrice 获取当前入场价格
// 空仓时返回 0
func (e *Engine) EntryPrice() float64 {
	if e.position == 0 {
		return 0
	}
	return e.entryPx
}

// RealizedPnL 获取累计已实现盈亏
func (e *Engine) RealizedPnL() float64 {
	return e.realized
}

// IsFlat 判断是否空仓
func (e *Engine) IsFlat() bool {
	return e.position == 0
}
