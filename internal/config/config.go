// Package config 负责加载和验证扫描器配置。
// 顺序：YAML 文件 → 环境变量覆盖 → 默认值 → 验证。
// 检测阈值、交易时段、动作过滤等均为显式配置项，不使用内嵌字面量。
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"latency-arb-scanner/internal/util/timeutil"
)

// Config 应用配置根结构
// 包含所有子模块的配置项
type Config struct {
	// App 应用基础配置
	App AppConfig `yaml:"app" envPrefix:"APP_"`
	// Input 输入数据配置
	Input InputConfig `yaml:"input" envPrefix:"INPUT_"`
	// Market 交易时段与动作过滤配置（预处理使用）
	Market MarketConfig `yaml:"market" envPrefix:"MARKET_"`
	// Detector 信号检测参数配置
	Detector DetectorConfig `yaml:"detector" envPrefix:"DETECTOR_"`
	// Engine 模拟交易引擎配置
	Engine EngineConfig `yaml:"engine" envPrefix:"ENGINE_"`
	// Output 输出配置
	Output OutputConfig `yaml:"output" envPrefix:"OUTPUT_"`
	// Feed 信号推送服务配置
	Feed FeedConfig `yaml:"feed" envPrefix:"FEED_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	// Name 应用名称，用于日志标识
	Name string `yaml:"name" env:"NAME"`
	// LogLevel 日志级别: debug, info, warn, error
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// InputConfig 输入数据配置
type InputConfig struct {
	// Dir tick 文件目录，目录内每个 .gz 文件解析为一张表
	Dir string `yaml:"dir" env:"DIR"`
}

// MarketConfig 交易时段与动作过滤配置
// 时间戳使用 HHMMSSmmm 编码，可直接与 tick 时间戳做区间比较
type MarketConfig struct {
	// Open 开盘时刻（HHMMSSmmm），默认 93000000 即 09:30:00.000
	Open int64 `yaml:"open" env:"OPEN"`
	// Close 收盘时刻（HHMMSSmmm），默认 160000000 即 16:00:00.000
	Close int64 `yaml:"close" env:"CLOSE"`
	// ActionType 报价动作过滤子串，默认 FQ（FirmQuote）
	ActionType string `yaml:"action_type" env:"ACTION_TYPE"`
}

// DetectorConfig 信号检测参数配置
type DetectorConfig struct {
	// Threshold 数量阈值（标的单位），运行段主导方向累计数量需达到该值
	Threshold float64 `yaml:"threshold" env:"THRESHOLD"`
	// Latency 持续性阈值（行数），运行段行数差需达到该值
	Latency int `yaml:"latency" env:"LATENCY"`
	// TransactionFee 每信号交易费（百分位刻度，比较时除以 100）
	TransactionFee float64 `yaml:"transaction_fee" env:"TRANSACTION_FEE"`
}

// EngineConfig 模拟交易引擎配置
type EngineConfig struct {
	// TransactionFee 每次进出场的交易费（价格单位）
	TransactionFee float64 `yaml:"transaction_fee" env:"TRANSACTION_FEE"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// Dir 输出目录
	Dir string `yaml:"dir" env:"DIR"`
	// SignalsEnabled 是否输出信号文件
	SignalsEnabled bool `yaml:"signals_enabled" env:"SIGNALS_ENABLED"`
	// PnLEnabled 是否输出回放 PnL 文件
	PnLEnabled bool `yaml:"pnl_enabled" env:"PNL_ENABLED"`
	// MetricsEnabled 是否输出指标文件
	MetricsEnabled bool `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
	// BufferSize 异步写入缓冲区大小
	BufferSize int `yaml:"buffer_size" env:"BUFFER_SIZE"`
}

// FeedConfig 信号推送服务配置
// 启用后在回放过程中通过 WebSocket 向订阅者广播信号与 PnL 事件
type FeedConfig struct {
	// Enabled 是否启用推送服务
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Addr 监听地址，如 :8080
	Addr string `yaml:"addr" env:"ADDR"`
	// PingIntervalMs 心跳间隔（毫秒）
	PingIntervalMs int `yaml:"ping_interval_ms" env:"PING_INTERVAL_MS"`
	// WriteTimeoutMs 单次写入超时（毫秒）
	WriteTimeoutMs int `yaml:"write_timeout_ms" env:"WRITE_TIMEOUT_MS"`
}

// Load 从文件加载配置并验证
// 环境变量（前缀 SCANNER_）覆盖文件中的同名配置项
// 参数 path: 配置文件路径
// 返回: 解析后的配置对象，若失败则返回错误
func Load(path string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析 YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 环境变量覆盖（仅覆盖已设置的变量）
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SCANNER_"}); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	// 设置默认值
	cfg.setDefaults()

	// 验证配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置配置默认值
// 检测与时段默认值取自研究脚本的示例参数
func (c *Config) setDefaults() {
	// 应用默认值
	if c.App.Name == "" {
		c.App.Name = "latency-arb-scanner"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}

	// 交易时段默认值：09:30:00.000 - 16:00:00.000，动作过滤 FQ
	if c.Market.Open == 0 {
		c.Market.Open = 93000000
	}
	if c.Market.Close == 0 {
		c.Market.Close = 160000000
	}
	if c.Market.ActionType == "" {
		c.Market.ActionType = "FQ"
	}

	// 检测器默认值
	if c.Detector.Threshold == 0 {
		c.Detector.Threshold = 50
	}
	if c.Detector.Latency == 0 {
		c.Detector.Latency = 10
	}
	if c.Detector.TransactionFee == 0 {
		c.Detector.TransactionFee = 50
	}

	// 模拟交易引擎默认值
	if c.Engine.TransactionFee == 0 {
		c.Engine.TransactionFee = 0.50
	}

	// 输出默认值
	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Output.BufferSize == 0 {
		c.Output.BufferSize = 1000
	}

	// 推送服务默认值
	if c.Feed.Addr == "" {
		c.Feed.Addr = ":8080"
	}
	if c.Feed.PingIntervalMs == 0 {
		c.Feed.PingIntervalMs = 25000
	}
	if c.Feed.WriteTimeoutMs == 0 {
		c.Feed.WriteTimeoutMs = 10000
	}
}

// Validate 验证配置合法性
// 检查所有必填项和数值范围
// 返回: 若配置无效则返回描述性错误
func (c *Config) Validate() error {
	var errs []string

	// 验证输入目录
	if c.Input.Dir == "" {
		errs = append(errs, "input.dir: tick 文件目录不能为空")
	}

	// 验证交易时段
	if !timeutil.Valid(c.Market.Open) {
		errs = append(errs, fmt.Sprintf("market.open: 非法 HHMMSSmmm 时刻: %d", c.Market.Open))
	}
	if !timeutil.Valid(c.Market.Close) {
		errs = append(errs, fmt.Sprintf("market.close: 非法 HHMMSSmmm 时刻: %d", c.Market.Close))
	}
	if c.Market.Open >= c.Market.Close {
		errs = append(errs, "market: 开盘时刻必须早于收盘时刻")
	}
	if c.Market.ActionType == "" {
		errs = append(errs, "market.action_type: 动作过滤子串不能为空")
	}

	// 验证检测器参数
	if c.Detector.Threshold < 0 {
		errs = append(errs, "detector.threshold: 数量阈值不能为负数")
	}
	if c.Detector.Latency < 0 {
		errs = append(errs, "detector.latency: 持续性阈值不能为负数")
	}
	if c.Detector.TransactionFee < 0 {
		errs = append(errs, "detector.transaction_fee: 交易费不能为负数")
	}

	// 验证模拟交易引擎参数
	if c.Engine.TransactionFee < 0 {
		errs = append(errs, "engine.transaction_fee: 交易费不能为负数")
	}

	// 验证输出参数
	if c.Output.BufferSize <= 0 {
		errs = append(errs, "output.buffer_size: 缓冲区大小必须为正数")
	}

	// 验证推送服务参数
	if c.Feed.Enabled {
		if c.Feed.Addr == "" {
			errs = append(errs, "feed.addr: 启用推送服务时监听地址不能为空")
		}
		if c.Feed.PingIntervalMs <= 0 {
			errs = append(errs, "feed.ping_interval_ms: 心跳间隔必须为正数")
		}
	}

	// 验证日志级别
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, fmt.Sprintf("app.log_level: 无效的日志级别 '%s'，有效值: debug, info, warn, error", c.App.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("配置验证错误:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
