// Package timeutil 提供 HHMMSSmmm 编码时间戳的工具函数。
// 行情 tick 使用当日时刻整数编码（如 93000000 表示 09:30:00.000），
// 编码值保持字典序与时间序一致，可直接做区间比较。
package timeutil

import (
	"fmt"
)

// Valid 校验 HHMMSSmmm 编码是否为合法当日时刻
// 小时 0-23、分钟 0-59、秒 0-59、毫秒 0-999
func Valid(ts int64) bool {
	if ts < 0 {
		return false
	}
	hh := ts / 10000000
	mm := ts / 100000 % 100
	ss := ts / 1000 % 100
	return hh < 24 && mm < 60 && ss < 60
}

// ToMillisOfDay 将 HHMMSSmmm 编码转换为当日毫秒数
// 用于计算两个编码时间戳之间的真实时间差
func ToMillisOfDay(ts int64) int64 {
	hh := ts / 10000000
	mm := ts / 100000 % 100
	ss := ts / 1000 % 100
	mmm := ts % 1000
	return ((hh*60+mm)*60+ss)*1000 + mmm
}

// FromMillisOfDay 将当日毫秒数转换回 HHMMSSmmm 编码
func FromMillisOfDay(ms int64) int64 {
	mmm := ms % 1000
	ss := ms / 1000 % 60
	mm := ms / 60000 % 60
	hh := ms / 3600000
	return hh*10000000 + mm*100000 + ss*1000 + mmm
}

// DiffMs 计算两个编码时间戳之间的毫秒差（end - start）
func DiffMs(startTS, endTS int64) int64 {
	return ToMillisOfDay(endTS) - ToMillisOfDay(startTS)
}

// Format 将 HHMMSSmmm 编码格式化为 HH:MM:SS.mmm
// 用于日志与输出文件中的可读时间
func Format(ts int64) string {
	hh := ts / 10000000
	mm := ts / 100000 % 100
	ss := ts / 1000 % 100
	mmm := ts % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hh, mm, ss, mmm)
}
