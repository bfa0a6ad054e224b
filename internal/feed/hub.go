// Package feed 实现信号与回放事件的 WebSocket 推送服务。
// Hub 维护订阅连接集合，将扫描产出的信号记录与回放 PnL 事件
// 广播给所有在线客户端。仅为研究用途的外围组件。
package feed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"
)

const (
	// sendBufferSize 每个客户端的发送缓冲区大小
	sendBufferSize = 256
	// maxMessageSize 入站消息大小上限
	maxMessageSize = 1024
)

// upgrader WebSocket 升级参数
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 研究工具，放开所有来源
		return true
	},
}

// client 单个 WebSocket 连接
type client struct {
	// id 连接标识
	id string
	// conn 底层连接
	conn *websocket.Conn
	// send 出站消息缓冲
	send chan []byte
}

// Hub WebSocket 广播中心
// 单 goroutine 管理连接集合，Broadcast 非阻塞投递。
type Hub struct {
	// clients 在线连接集合
	clients map[*client]bool
	// broadcast 广播通道
	broadcast chan []byte
	// register 注册通道
	register chan *client
	// unregister 注销通道
	unregister chan *client

	// pingInterval 心跳间隔
	pingInterval time.Duration
	// writeTimeout 单次写入超时
	writeTimeout time.Duration

	// logger 日志
	logger *zap.Logger

	mu sync.RWMutex
}

// NewHub 创建广播中心
// 参数 pingInterval: 心跳间隔
// 参数 writeTimeout: 单次写入超时
func NewHub(pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:      make(map[*client]bool),
		broadcast:    make(chan []byte, sendBufferSize),
		register:     make(chan *client),
		unregister:   make(chan *client),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Run 运行广播循环，ctx 取消后关闭全部连接并返回
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("feed 客户端接入", zap.String("client", c.id))

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("feed 客户端断开", zap.String("client", c.id))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 慢客户端：丢弃消息而不阻塞广播
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast 向所有在线客户端广播一条 JSON 消息
// 编码失败或无人订阅时静默返回
func (h *Hub) Broadcast(v any) {
	b, err := sonnet.Marshal(v)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- b:
	default:
		// 广播缓冲已满：回放速度远快于消费时丢弃
	}
}

// ClientCount 获取当前在线连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS 处理 WebSocket 升级请求
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.register <- c

	go h.writePump(c)
	go h.readPump(c)
}

// writePump 客户端写循环：转发广播消息并定期发送 ping
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 客户端读循环：仅消费控制帧，入站数据帧丢弃
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
