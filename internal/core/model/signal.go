// Package model 定义扫描器中使用的核心数据结构。
package model

// SignalKey 信号记录键
// 由运行段的起止时间戳和当前交易所唯一确定
type SignalKey struct {
	// StartTS 运行段起始时间戳（HHMMSSmmm）
	StartTS int64
	// EndTS 运行段结束时间戳（HHMMSSmmm，含端点）
	EndTS int64
	// Exchange 运行段归属的当前交易所
	Exchange string
}

// SignalStats 信号记录值
// 对应一次可套利的跨交易所价差事件
type SignalStats struct {
	// Duration 运行段持续行数（end - start）
	Duration int
	// Edge 扣除手续费后的净价差
	// 计算公式: current_price + stale_price - fee/100
	// A 方向价格已取反存储，因此该和即为真实正价差
	Edge float64
	// Quantity 触发方向在运行段内累计的数量
	Quantity float64
	// StaleExchange 用于比较的对侧陈旧报价所属交易所
	StaleExchange string
}

// SignalRecord 单条信号记录（键值对展开形式）
// 用于 JSONL 输出与 WebSocket 推送
type SignalRecord struct {
	// StartTS 运行段起始时间戳
	StartTS int64 `json:"start_ts"`
	// EndTS 运行段结束时间戳
	EndTS int64 `json:"end_ts"`
	// Exchange 当前交易所
	Exchange string `json:"exchange"`
	// Duration 持续行数
	Duration int `json:"duration"`
	// Edge 净价差
	Edge float64 `json:"edge"`
	// Quantity 触发方向累计数量
	Quantity float64 `json:"quantity"`
	// StaleExchange 陈旧对侧交易所
	StaleExchange string `json:"stale_exchange"`
}

// SignalSet 信号累计映射（保持插入顺序）
// 语义与“按迭代顺序合并的可变字典”一致：
// 新键追加到末尾，键冲突时原位置覆盖值。
// 冲突仅在两个运行段的 (start, end, exchange) 完全相同时发生，
// 分段算法下不会出现，但覆盖语义仍需保留。
type SignalSet struct {
	// keys 按插入顺序排列的键列表
	keys []SignalKey
	// values 键到值的映射
	values map[SignalKey]SignalStats
}

// NewSignalSet 创建空的信号集合
func NewSignalSet() *SignalSet {
	return &SignalSet{
		values: make(map[SignalKey]SignalStats),
	}
}

// Put 写入一条信号
// 已存在的键保持原插入位置，仅覆盖值
func (s *SignalSet) Put(key SignalKey, stats SignalStats) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = stats
}

// Get 按键查询信号
func (s *SignalSet) Get(key SignalKey) (SignalStats, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len 获取信号条数
func (s *SignalSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys 获取按插入顺序排列的键列表
// 返回内部切片的拷贝
func (s *SignalSet) Keys() []SignalKey {
	out := make([]SignalKey, len(s.keys))
	copy(out, s.keys)
	return out
}

// Records 按插入顺序导出全部信号记录
func (s *SignalSet) Records() []SignalRecord {
	out := make([]SignalRecord, 0, len(s.keys))
	for _, k := range s.keys {
		v := s.values[k]
		out = append(out, SignalRecord{
			StartTS:       k.StartTS,
			EndTS:         k.EndTS,
			Exchange:      k.Exchange,
			Duration:      v.Duration,
			Edge:          v.Edge,
			Quantity:      v.Quantity,
			StaleExchange: v.StaleExchange,
		})
	}
	return out
}

// Equal 判断两个信号集合是否完全一致（键、值、顺序）
// 用于幂等性验证
func (s *SignalSet) Equal(other *SignalSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, k := range s.keys {
		if other.keys[i] != k {
			return false
		}
		if s.values[k] != other.values[k] {
			return false
		}
	}
	return true
}
