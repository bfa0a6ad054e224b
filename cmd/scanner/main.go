// Package main 是陈旧报价套利扫描器的入口点。
// 扫描器读取压缩 tick 文件目录，经预处理得到按时间戳对齐的宽表，
// 对每张表做单次前向扫描检测短暂的跨交易所套利窗口，
// 并可选地回放行情驱动模拟交易引擎、通过 WebSocket 推送结果。
//
// 重要：本系统仅用于研究/验证，严禁真实下单。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"latency-arb-scanner/internal/config"
	"latency-arb-scanner/internal/core/detect"
	"latency-arb-scanner/internal/core/model"
	"latency-arb-scanner/internal/feed"
	"latency-arb-scanner/internal/ingest"
	"latency-arb-scanner/internal/live"
	"latency-arb-scanner/internal/output/jsonl"
	"latency-arb-scanner/internal/preprocess"
	"latency-arb-scanner/internal/replay"
	"latency-arb-scanner/internal/stats/scan"
)

// tableSignal 带表名的信号记录（JSONL 输出与推送格式）
type tableSignal struct {
	// Table 来源表（tick 文件名）
	Table string `json:"table"`
	model.SignalRecord
}

// tablePnL 带表名的回放 PnL 事件
type tablePnL struct {
	// Table 来源表（tick 文件名）
	Table string `json:"table"`
	live.Event
}

// metricsSnapshot 指标快照
type metricsSnapshot struct {
	// ScanID 本次扫描标识
	ScanID string `json:"scan_id"`
	// Tables 处理的表数
	Tables int `json:"tables"`
	// Rows 宽表总行数
	Rows int `json:"rows"`
	// Scan 信号统计
	Scan scan.Stats `json:"scan"`
	// ElapsedMs 扫描耗时（毫秒）
	ElapsedMs int64 `json:"elapsed_ms"`
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 捕获 SIGINT/SIGTERM，触发优雅退出
	sigCh := make(chan os.Signal, 2)
	ossignal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("收到退出信号，开始优雅关闭")
		cancel()
	}()

	scanID := uuid.NewString()
	startedAt := time.Now()
	logger.Info("扫描开始",
		zap.String("scan_id", scanID),
		zap.String("input_dir", cfg.Input.Dir))

	// 读取 tick 文件并预处理为宽表
	raw, err := ingest.NewReader(logger).ReadDir(cfg.Input.Dir)
	if err != nil {
		logger.Error("读取 tick 目录失败", zap.Error(err))
		os.Exit(1)
	}
	if len(raw) == 0 {
		logger.Warn("目录中没有 tick 文件", zap.String("dir", cfg.Input.Dir))
	}

	tables := preprocess.New(cfg.Market).RunAll(raw)

	// 按表名排序，保证多表处理顺序确定
	names := make([]string, 0, len(tables))
	totalRows := 0
	for name, t := range tables {
		names = append(names, name)
		totalRows += t.Len()
	}
	sort.Strings(names)

	// 信号检测（逐表独立，状态均为扫描局部）
	detector := detect.New(cfg.Detector)
	results := detector.ScanAll(tables)

	tracker := scan.NewTracker(10000)
	var allSignals []tableSignal
	for _, name := range names {
		set := results[name]
		tracker.AddSet(set)
		for _, rec := range set.Records() {
			allSignals = append(allSignals, tableSignal{Table: name, SignalRecord: rec})
		}
		logger.Info("表扫描完成",
			zap.String("table", name),
			zap.Int("rows", tables[name].Len()),
			zap.Int("signals", set.Len()))
	}

	// 输出写入器
	var signalsWriter, pnlWriter, metricsWriter *jsonl.Writer
	if cfg.Output.SignalsEnabled {
		signalsWriter, err = jsonl.NewWriter(fmt.Sprintf("%s/signals.jsonl", cfg.Output.Dir), cfg.Output.BufferSize)
		if err != nil {
			logger.Error("创建 signals writer 失败", zap.Error(err))
			os.Exit(1)
		}
	}
	if cfg.Output.PnLEnabled {
		pnlWriter, err = jsonl.NewWriter(fmt.Sprintf("%s/pnl.jsonl", cfg.Output.Dir), cfg.Output.BufferSize)
		if err != nil {
			logger.Error("创建 pnl writer 失败", zap.Error(err))
			os.Exit(1)
		}
	}
	if cfg.Output.MetricsEnabled {
		metricsWriter, err = jsonl.NewWriter(fmt.Sprintf("%s/metrics.jsonl", cfg.Output.Dir), cfg.Output.BufferSize)
		if err != nil {
			logger.Error("创建 metrics writer 失败", zap.Error(err))
			os.Exit(1)
		}
	}

	// 推送服务（可选）
	var feedServer *feed.Server
	if cfg.Feed.Enabled {
		feedServer = feed.NewServer(cfg.Feed,
			func() []model.SignalRecord {
				out := make([]model.SignalRecord, 0, len(allSignals))
				for _, s := range allSignals {
					out = append(out, s.SignalRecord)
				}
				return out
			},
			tracker.Stats,
			logger,
		)
		feedServer.Start(ctx)
	}

	for _, s := range allSignals {
		if signalsWriter != nil {
			_ = signalsWriter.Write(s)
		}
		if feedServer != nil {
			feedServer.Hub().Broadcast(s)
		}
	}

	// 回放执行：逐表驱动模拟交易引擎（状态按表独立）
	if cfg.Output.PnLEnabled || cfg.Feed.Enabled {
		for _, name := range names {
			runner := live.NewRunner(cfg.Engine, logger)
			err := runner.Run(ctx, replay.NewFeed(tables[name]), func(ev live.Event) {
				rec := tablePnL{Table: name, Event: ev}
				if pnlWriter != nil {
					_ = pnlWriter.Write(rec)
				}
				if feedServer != nil {
					feedServer.Hub().Broadcast(rec)
				}
			})
			if err != nil {
				logger.Warn("回放中断", zap.String("table", name), zap.Error(err))
				break
			}
			logger.Info("回放完成",
				zap.String("table", name),
				zap.Float64("realized_pnl", runner.Engine().RealizedPnL()))
		}
	}

	// 指标快照（便于离线复盘）
	snap := metricsSnapshot{
		ScanID:    scanID,
		Tables:    len(tables),
		Rows:      totalRows,
		Scan:      tracker.Stats(),
		ElapsedMs: time.Since(startedAt).Milliseconds(),
	}
	if metricsWriter != nil {
		_ = metricsWriter.Write(snap)
		_ = metricsWriter.Flush()
	}
	logger.Info("扫描结束",
		zap.String("scan_id", scanID),
		zap.Int64("signals", snap.Scan.Count),
		zap.Int64("elapsed_ms", snap.ElapsedMs))

	// 推送服务启用时保持在线，等待退出信号
	if feedServer != nil && ctx.Err() == nil {
		logger.Info("feed 服务保持在线，Ctrl-C 退出")
		<-ctx.Done()
	}

	// 优雅关闭（10s 超时）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if feedServer != nil {
			_ = feedServer.Shutdown(shutdownCtx)
		}
		if signalsWriter != nil {
			_ = signalsWriter.Close()
		}
		if pnlWriter != nil {
			_ = pnlWriter.Close()
		}
		if metricsWriter != nil {
			_ = metricsWriter.Close()
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("关闭超时，强制退出")
	case <-done:
		logger.Info("关闭完成")
	}
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
