// Package fastparse 提供高性能的字符串解析函数。
// 避免在 tick 文件解析热路径使用 fmt，统一走 strconv。
// 空白字段按缺失处理，与宽表的 NaN 哨兵语义衔接。
package fastparse

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat 快速解析浮点数字符串
// 参数 s: 待解析的字符串，如 "12345.67"
// 返回: 解析后的浮点数和可能的错误
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// ParseInt 快速解析整数字符串
// 用于解析 HHMMSSmmm 时间戳等整数字段
// 返回: 解析后的整数和可能的错误
func ParseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// OptionalFloat 解析可缺失的浮点数字段
// 空串或空白返回 NaN 哨兵；非法内容同样按缺失处理，
// 与“缺失数据是机会缺失而非错误”的策略一致。
func OptionalFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// MustParseFloat 解析浮点数，失败时返回 0
// 用于已知格式正确的场景，简化错误处理
func MustParseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// MustParseInt 解析整数，失败时返回 0
// 用于已知格式正确的场景，简化错误处理
func MustParseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatFloat 格式化浮点数为字符串
// 参数 prec: 小数位数，-1 表示最短表示
func FormatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}
