// Package store 维护扫描过程中各 (交易所, 方向) 的最近价格。
// 单写者模式，由检测器或回放执行器在单 goroutine 内更新。
package store

import (
	"latency-arb-scanner/internal/core/model"
)

// PriceKey 最近价格映射的键
type PriceKey struct {
	// Exchange 交易所标识
	Exchange string
	// Side 报价方向: A 或 B
	Side model.Side
}

// Entry 对侧报价查询结果的单条记录
type Entry struct {
	// Key 价格键
	Key PriceKey
	// Price 最近观察到的价格，可能为 NaN（从未观察到有效值）
	Price float64
}

// LatestPrices 最近价格映射（单写者）
// 不变式：任意扫描位置上，映射保存每个 (交易所, 方向) 迄今最后一次
// 观察到的价格；一旦写入，值保持到被更新的非缺失观测覆盖为止。
// 键按首次插入顺序记录，保证极值选取的平局裁决是确定性的。
type LatestPrices struct {
	// order 按首次插入顺序排列的键
	order []PriceKey
	// prices 键到最近价格的映射
	prices map[PriceKey]float64
}

// New 创建空的最近价格映射
func New() *LatestPrices {
	return &LatestPrices{
		prices: make(map[PriceKey]float64),
	}
}

// Update 更新指定 (交易所, 方向) 的最近价格
// 若 price 缺失（NaN），保留已有值；键不存在时写入 NaN 哨兵，
// 与“见过该键但尚无有效价格”的语义一致。
func (l *LatestPrices) Update(exchange string, side model.Side, price float64) {
	key := PriceKey{Exchange: exchange, Side: side}
	prev, seen := l.prices[key]
	if !seen {
		l.order = append(l.order, key)
		prev = model.NaN()
	}
	if model.IsMissing(price) {
		l.prices[key] = prev
		return
	}
	l.prices[key] = price
}

// Get 获取指定 (交易所, 方向) 的最近价格
// 从未见过的键返回 NaN 和 false
func (l *LatestPrices) Get(exchange string, side model.Side) (float64, bool) {
	v, ok := l.prices[PriceKey{Exchange: exchange, Side: side}]
	if !ok {
		return model.NaN(), false
	}
	return v, ok
}

// Len 获取映射中的键数
func (l *LatestPrices) Len() int {
	return len(l.order)
}

// OppositeOf 获取指定方向上、排除指定交易所的全部最近价格
// 即其他交易所在对侧的陈旧报价集合，按首次插入顺序返回。
// 返回值可能包含 NaN 价格（键已见过但价格始终缺失）。
func (l *LatestPrices) OppositeOf(side model.Side, excludeExchange string) []Entry {
	var out []Entry
	for _, key := range l.order {
		if key.Side != side || key.Exchange == excludeExchange {
			continue
		}
		out = append(out, Entry{Key: key, Price: l.prices[key]})
	}
	return out
}
