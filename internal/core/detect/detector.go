// Package detect 实现陈旧报价套利信号检测。
// 对时间有序的宽表做单次前向扫描：按主导交易所切分运行段、
// 累计双方向数量压力、维护最近价格映射，并在运行段的持续行数
// 与数量越过阈值、且跨交易所价差扣费后为正时产出信号记录。
package detect

import (
	"math"

	"latency-arb-scanner/internal/apply"
	"latency-arb-scanner/internal/config"
	"latency-arb-scanner/internal/core/model"
	"latency-arb-scanner/internal/core/store"
)

// Detector 信号检测器
// 纯函数式：每次 Scan 的全部状态（最近价格映射、运行段累计量）
// 均为扫描局部，跨调用不共享，同一输入与参数下结果幂等。
type Detector struct {
	// threshold 数量阈值：运行段主导方向累计数量需达到该值（>= 语义）
	threshold float64
	// latency 持续性阈值：运行段行数差 end-start 需达到该值（>= 语义）
	latency int
	// fee 每信号交易费，百分位刻度，比较时除以 100
	fee float64
}

// New 创建信号检测器
// 参数 cfg: 检测器参数配置
func New(cfg config.DetectorConfig) *Detector {
	return &Detector{
		threshold: cfg.Threshold,
		latency:   cfg.Latency,
		fee:       cfg.TransactionFee,
	}
}

// Scan 对单张宽表执行信号检测
// 输入必须已按时间戳升序排列；空表退化为空信号集合。
// 返回按首次产出顺序排列的信号集合。
func (d *Detector) Scan(table *model.Table) *model.SignalSet {
	out := model.NewSignalSet()
	if table == nil || len(table.Rows) == 0 {
		return out
	}

	rows := table.Rows
	latest := store.New()

	i := 0
	for i < len(rows) {
		signalStart := i

		// 当前交易所：B 方向缺失时取 A 方向
		currentEx := rows[i].ExchangeB
		if currentEx == "" {
			currentEx = rows[i].ExchangeA
		}

		// 仅在运行段首行更新最近价格映射；
		// 本行价格缺失时保留旧值而非覆盖为缺失
		latest.Update(currentEx, model.SideA, rows[i].PriceA)
		latest.Update(currentEx, model.SideB, rows[i].PriceB)

		// 数量累计在每个运行段起点清零；缺失数量按 NaN 传播，
		// 自然使该方向无法通过阈值检验
		var sumQA, sumQB float64

		// 前向扩展运行段：任一方向交易所等于当前交易所即延续
		j := i
		for j < len(rows) && (rows[j].ExchangeA == currentEx || rows[j].ExchangeB == currentEx) {
			sumQA += rows[j].QuantityA
			sumQB += rows[j].QuantityB
			j++
		}

		// 运行段终点（含）
		signalEnd := j - 1

		// 压力方向判定：对侧累计量缺失不压制本侧信号
		switch {
		case sumQA >= d.threshold && (math.IsNaN(sumQB) || sumQB < d.threshold):
			d.evaluate(out, rows, signalStart, signalEnd, model.SideA, sumQA, currentEx, latest)
		case sumQB >= d.threshold && (math.IsNaN(sumQA) || sumQA < d.threshold):
			d.evaluate(out, rows, signalStart, signalEnd, model.SideB, sumQB, currentEx, latest)
		case sumQA >= d.threshold && sumQB >= d.threshold:
			d.evaluate(out, rows, signalStart, signalEnd, model.SideA, sumQA, currentEx, latest)
			d.evaluate(out, rows, signalStart, signalEnd, model.SideB, sumQB, currentEx, latest)
		}

		// 跳到运行段之后
		i = j
	}

	return out
}

// evaluate 评估单个候选信号（方向 side，对侧 side.Opposite()）
// 依次检验：持续性、对侧陈旧报价可得性、扣费后价差为正（严格 >）。
// 任一条件不满足即静默放弃，数据缺失视为机会缺失而非错误。
func (d *Detector) evaluate(
	out *model.SignalSet,
	rows []model.Row,
	signalStart, signalEnd int,
	side model.Side,
	sumQ float64,
	currentEx string,
	latest *store.LatestPrices,
) {
	// 持续性检验：行数差不足 latency 视为瞬时噪声
	if signalEnd-signalStart < d.latency {
		return
	}

	currentPrice := rows[signalEnd].Price(side)

	// 对侧陈旧报价：其他交易所在对侧的最近价格
	// A 方向取最大值（他处最激进的卖价），B 方向取最小值；
	// 精确平局时取最早插入的键
	stalePrice := model.NaN()
	staleEx := ""
	for _, e := range latest.OppositeOf(side.Opposite(), currentEx) {
		if model.IsMissing(e.Price) {
			continue
		}
		if model.IsMissing(stalePrice) ||
			(side == model.SideA && e.Price > stalePrice) ||
			(side == model.SideB && e.Price < stalePrice) {
			stalePrice = e.Price
			staleEx = e.Key.Exchange
		}
	}

	// 比较价不可得（无对侧条目或价格全缺失）则无信号；
	// 该守卫保证不会带着未定义比较价产出信号
	if model.IsMissing(stalePrice) {
		return
	}

	// edge = current + stale - fee/100
	// A 方向价格取反存储，该和即为真实价差；要求严格为正
	fee := d.fee / 100
	if !(currentPrice+stalePrice > fee) {
		return
	}

	out.Put(
		model.SignalKey{
			StartTS:  rows[signalStart].Timestamp,
			EndTS:    rows[signalEnd].Timestamp,
			Exchange: currentEx,
		},
		model.SignalStats{
			Duration:      signalEnd - signalStart,
			Edge:          currentPrice + stalePrice - fee,
			Quantity:      sumQ,
			StaleExchange: staleEx,
		},
	)
}

// ScanAll 对命名表映射逐表执行检测
// 各表独立、键保持不变；检测器本身不感知批量与否。
func (d *Detector) ScanAll(tables map[string]*model.Table) map[string]*model.SignalSet {
	return apply.ToEach(tables, d.Scan)
}
