// Package replay 实现模拟实时到达的前缀回放迭代器。
// 第 k 次迭代产出输入表从首行到第 k 行的前缀，模拟行情的顺序到达。
package replay

import (
	"latency-arb-scanner/internal/core/model"
)

// Feed 前缀回放迭代器
// 惰性、有限、不可重置：每次 Next 前进一行，耗尽后始终返回 false。
// 前缀与输入表共享底层数组，调用方必须视为只读。
type Feed struct {
	// table 被回放的宽表
	table *model.Table
	// pos 已产出的前缀长度
	pos int
}

// NewFeed 创建回放迭代器
// 参数 table: 已按时间戳升序排列的宽表
func NewFeed(table *model.Table) *Feed {
	return &Feed{table: table}
}

// Next 产出下一个前缀
// 返回: 前缀表和是否仍有数据；耗尽后返回 (nil, false)。
func (f *Feed) Next() (*model.Table, bool) {
	if f.table == nil || f.pos >= len(f.table.Rows) {
		return nil, false
	}
	f.pos++
	return f.table.Prefix(f.pos), true
}

// Remaining 获取尚未产出的行数
func (f *Feed) Remaining() int {
	if f.table == nil {
		return 0
	}
	return len(f.table.Rows) - f.pos
}
