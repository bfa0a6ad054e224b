// Package feed 实现信号与回放事件的 WebSocket 推送服务。
package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"latency-arb-scanner/internal/config"
	"latency-arb-scanner/internal/core/model"
	"latency-arb-scanner/internal/stats/scan"
)

// SnapshotFunc 信号快照提供函数
// 返回当前已检出的全部信号记录（按产出顺序）
type SnapshotFunc func() []model.SignalRecord

// StatsFunc 扫描统计快照提供函数
type StatsFunc func() scan.Stats

// Server 推送服务 HTTP 入口
// 路由: /healthz 健康检查、/signals 信号快照、/stats 扫描统计、/ws 订阅。
type Server struct {
	// hub 广播中心
	hub *Hub
	// srv HTTP 服务
	srv *http.Server
	// logger 日志
	logger *zap.Logger
}

// NewServer 创建推送服务
// 参数 cfg: 推送服务配置
// 参数 snapshot: 信号快照提供函数
// 参数 stats: 扫描统计快照提供函数
func NewServer(cfg config.FeedConfig, snapshot SnapshotFunc, stats StatsFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := NewHub(
		time.Duration(cfg.PingIntervalMs)*time.Millisecond,
		time.Duration(cfg.WriteTimeoutMs)*time.Millisecond,
		logger,
	)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/signals", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, snapshot())
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, stats())
	})

	r.Get("/ws", hub.ServeWS)

	return &Server{
		hub: hub,
		srv: &http.Server{
			Addr:    cfg.Addr,
			Handler: r,
		},
		logger: logger,
	}
}

// Hub 获取广播中心
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start 启动广播循环与 HTTP 监听（非阻塞）
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	go func() {
		s.logger.Info("feed 服务启动", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("feed 服务异常退出", zap.Error(err))
		}
	}()
}

// Shutdown 优雅关闭 HTTP 服务
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// writeJSON 输出 JSON 响应
func writeJSON(w http.ResponseWriter, v any) {
	b, err := sonnet.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}
