// Package model 定义扫描器中使用的核心数据结构。
// 包含原始报价 tick、重塑后的宽表行、信号等核心类型。
package model

import (
	"math"
)

// Side 报价方向标识
type Side string

const (
	// SideA A 方向
	// 约定：重塑后 A 方向价格取反存储，使跨方向比较可以直接相加
	SideA Side = "A"
	// SideB B 方向
	SideB Side = "B"
)

// Opposite 获取对侧方向
// A 返回 B，B 返回 A
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// NaN 缺失价格/数量的哨兵值
// 与重塑后宽表中“本时间戳无更新”的语义一致，不代表非法数据
func NaN() float64 {
	return math.NaN()
}

// IsMissing 判断数值是否缺失（NaN 哨兵）
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Tick 原始报价 tick（长表形式）
// 每条 tick 仅携带一个方向的报价
type Tick struct {
	// Timestamp 时间戳，编码为 HHMMSSmmm（当日毫秒时刻）
	Timestamp int64
	// Exchange 交易所标识，空串表示缺失
	Exchange string
	// Action 报价动作类型，如 FQ（FirmQuote）
	Action string
	// Side 报价方向: A 或 B
	Side Side
	// Price 报价价格（原始符号，未取反）
	Price float64
	// Quantity 报价数量，NaN 表示缺失
	Quantity float64
}

// TickTable 原始 tick 表
// 行按 Timestamp 非降序排列
type TickTable struct {
	// Rows tick 行列表
	Rows []Tick
}

// Len 获取 tick 行数
func (t *TickTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Row 重塑后的宽表行
// 每个时间戳一行，携带 A/B 两个方向的交易所、价格、数量。
// 某方向在该时间戳无更新时，交易所为空串、价格/数量为 NaN（stale，不是非法）。
type Row struct {
	// Timestamp 时间戳，编码为 HHMMSSmmm
	Timestamp int64
	// ExchangeA A 方向交易所标识，空串表示缺失
	ExchangeA string
	// ExchangeB B 方向交易所标识，空串表示缺失
	ExchangeB string
	// PriceA A 方向价格（已取反存储），NaN 表示缺失
	PriceA float64
	// PriceB B 方向价格，NaN 表示缺失
	PriceB float64
	// QuantityA A 方向数量，NaN 表示缺失
	QuantityA float64
	// QuantityB B 方向数量，NaN 表示缺失
	QuantityB float64
}

// Exchange 按方向获取交易所标识
func (r *Row) Exchange(s Side) string {
	if s == SideA {
		return r.ExchangeA
	}
	return r.ExchangeB
}

// Price 按方向获取价格
func (r *Row) Price(s Side) float64 {
	if s == SideA {
		return r.PriceA
	}
	return r.PriceB
}

// Quantity 按方向获取数量
func (r *Row) Quantity(s Side) float64 {
	if s == SideA {
		return r.QuantityA
	}
	return r.QuantityB
}

// Table 检测器输入的宽表
// 行必须已按 Timestamp 升序排列，内部不做排序。
type Table struct {
	// Rows 宽表行列表
	Rows []Row
}

// Len 获取行数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Prefix 获取前 n 行的只读前缀视图
// 共享底层数组，调用方不得修改返回的表
func (t *Table) Prefix(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Rows: t.Rows[:n]}
}

// Last 获取最后一行
// 空表返回 nil
func (t *Table) Last() *Row {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	return &t.Rows[len(t.Rows)-1]
}
