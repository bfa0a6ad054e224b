// Package feed 推送服务测试
package feed

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"latency-arb-scanner/internal/config"
	"latency-arb-scanner/internal/core/model"
	"latency-arb-scanner/internal/stats/scan"
)

func newTestServer(t *testing.T, snapshot SnapshotFunc, stats StatsFunc) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(config.FeedConfig{
		Addr:           ":0",
		PingIntervalMs: 25000,
		WriteTimeoutMs: 10000,
	}, snapshot, stats, nil)

	ts := httptest.NewServer(s.srv.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func TestServer_Healthz(t *testing.T) {
	_, ts := newTestServer(t,
		func() []model.SignalRecord { return nil },
		func() scan.Stats { return scan.Stats{} },
	)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status=%d, want 200", resp.StatusCode)
	}
}

func TestServer_Signals(t *testing.T) {
	records := []model.SignalRecord{
		{StartTS: 93000000, EndTS: 93000100, Exchange: "X", Duration: 1, Edge: 14, Quantity: 60, StaleExchange: "Y"},
	}
	_, ts := newTestServer(t,
		func() []model.SignalRecord { return records },
		func() scan.Stats { return scan.Stats{} },
	)

	resp, err := ts.Client().Get(ts.URL + "/signals")
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type=%s", ct)
	}

	var got []model.SignalRecord
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if len(got) != 1 || got[0] != records[0] {
		t.Errorf("信号快照不一致: %+v", got)
	}
}

func TestServer_Stats(t *testing.T) {
	_, ts := newTestServer(t,
		func() []model.SignalRecord { return nil },
		func() scan.Stats { return scan.Stats{Count: 7, EdgeMax: 3.5} },
	)

	resp, err := ts.Client().Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	var got scan.Stats
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if got.Count != 7 || got.EdgeMax != 3.5 {
		t.Errorf("统计快照不一致: %+v", got)
	}
}

func TestHub_BroadcastToSubscriber(t *testing.T) {
	s, ts := newTestServer(t,
		func() []model.SignalRecord { return nil },
		func() scan.Stats { return scan.Stats{} },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket 连接失败: %v", err)
	}
	defer conn.Close()

	// 等待注册完成
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("客户端未注册")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec := model.SignalRecord{StartTS: 1, EndTS: 2, Exchange: "X", StaleExchange: "Y"}
	s.hub.Broadcast(rec)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("读取广播消息失败: %v", err)
	}

	var got model.SignalRecord
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("解析广播消息失败: %v", err)
	}
	if got != rec {
		t.Errorf("广播内容不一致: %+v", got)
	}
}

func TestHub_BroadcastWithoutSubscribers(t *testing.T) {
	h := NewHub(time.Second, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	// 无订阅者时广播不阻塞、不崩溃
	for i := 0; i < 10; i++ {
		h.Broadcast(model.SignalRecord{StartTS: int64(i)})
	}
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount=%d, want 0", h.ClientCount())
	}
}
