// Package preprocess 实现原始 tick 到检测器宽表的预处理管线。
// 步骤：交易时段过滤 → 剔除无交易所行 → 动作类型过滤 → 长表转宽表。
// 转宽表时 A 方向价格取反存储，使跨方向价差比较可以直接相加。
package preprocess

import (
	"strings"

	"latency-arb-scanner/internal/apply"
	"latency-arb-scanner/internal/config"
	"latency-arb-scanner/internal/core/model"
)

// Preprocessor 预处理器
// 过滤阈值来自显式配置，不使用内嵌字面量
type Preprocessor struct {
	// cfg 交易时段与动作过滤配置
	cfg config.MarketConfig
}

// New 创建预处理器
// 参数 cfg: 交易时段与动作过滤配置
func New(cfg config.MarketConfig) *Preprocessor {
	return &Preprocessor{cfg: cfg}
}

// FilterTradingHours 保留交易时段内的 tick（两端含）
func (p *Preprocessor) FilterTradingHours(t *model.TickTable) *model.TickTable {
	out := &model.TickTable{}
	for _, tick := range t.Rows {
		if tick.Timestamp >= p.cfg.Open && tick.Timestamp <= p.cfg.Close {
			out.Rows = append(out.Rows, tick)
		}
	}
	return out
}

// FilterMissingExchange 剔除交易所标识缺失的 tick
func (p *Preprocessor) FilterMissingExchange(t *model.TickTable) *model.TickTable {
	out := &model.TickTable{}
	for _, tick := range t.Rows {
		if tick.Exchange != "" {
			out.Rows = append(out.Rows, tick)
		}
	}
	return out
}

// FilterActions 保留动作类型包含配置子串的 tick
// 默认子串 FQ，即仅保留 FirmQuote 报价
func (p *Preprocessor) FilterActions(t *model.TickTable) *model.TickTable {
	out := &model.TickTable{}
	for _, tick := range t.Rows {
		if strings.Contains(tick.Action, p.cfg.ActionType) {
			out.Rows = append(out.Rows, tick)
		}
	}
	return out
}

// Reshape 将长表 tick 转为检测器需要的宽表
// 按时间戳聚合，每个时间戳一行；同一 (时间戳, 方向) 有多条 tick 时
// 逐字段取首个非缺失值。输入须已按时间戳升序排列。
// A 方向价格在此取反存储。
func Reshape(t *model.TickTable) *model.Table {
	out := &model.Table{}
	if t == nil || len(t.Rows) == 0 {
		return out
	}

	ticks := t.Rows
	i := 0
	for i < len(ticks) {
		ts := ticks[i].Timestamp
		row := model.Row{
			Timestamp: ts,
			PriceA:    model.NaN(),
			PriceB:    model.NaN(),
			QuantityA: model.NaN(),
			QuantityB: model.NaN(),
		}

		// 同一时间戳的 tick 分组，逐字段首个非缺失值生效
		for ; i < len(ticks) && ticks[i].Timestamp == ts; i++ {
			tick := &ticks[i]
			switch tick.Side {
			case model.SideA:
				if row.ExchangeA == "" {
					row.ExchangeA = tick.Exchange
				}
				if model.IsMissing(row.PriceA) {
					row.PriceA = tick.Price
				}
				if model.IsMissing(row.QuantityA) {
					row.QuantityA = tick.Quantity
				}
			case model.SideB:
				if row.ExchangeB == "" {
					row.ExchangeB = tick.Exchange
				}
				if model.IsMissing(row.PriceB) {
					row.PriceB = tick.Price
				}
				if model.IsMissing(row.QuantityB) {
					row.QuantityB = tick.Quantity
				}
			}
		}

		// A 方向价格取反，使 current + stale 直接给出真实价差
		if !model.IsMissing(row.PriceA) {
			row.PriceA = -row.PriceA
		}

		out.Rows = append(out.Rows, row)
	}

	return out
}

// Run 执行完整预处理管线，返回检测器输入宽表
func (p *Preprocessor) Run(t *model.TickTable) *model.Table {
	filtered := p.FilterTradingHours(t)
	filtered = p.FilterMissingExchange(filtered)
	filtered = p.FilterActions(filtered)
	return Reshape(filtered)
}

// RunAll 对命名表映射逐表执行预处理，键保持不变
func (p *Preprocessor) RunAll(tables map[string]*model.TickTable) map[string]*model.Table {
	return apply.ToEach(tables, p.Run)
}
