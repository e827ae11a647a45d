package eventbus

import (
	"context"
	"sync"
	"time"
)

// 事件类型
const (
	TypeBenchmarkImported = "benchmark_imported"
	TypeImportFailed      = "import_failed"
	TypeAggregationFailed = "aggregation_failed"
	TypeComparisonDone    = "comparison_completed"
)

type Event struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher 事件发布方
type Publisher interface {
	Publish(evt Event)
}

type subscription struct {
	types map[string]bool // 为空表示接收全部类型
}

func (s subscription) accepts(t string) bool {
	return len(s.types) == 0 || s.types[t]
}

// Hub 进程内事件分发（导入/聚合事件推送给 SSE 订阅者）
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]subscription)}
}

// Publish 非阻塞投递
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, sub := range h.subs {
		if !sub.accepts(evt.Type) {
			continue
		}
		select {
		case ch <- evt:
		default:
			// 慢消费者直接丢弃，不阻塞导入链路
		}
	}
}

// Subscribe 订阅事件，ctx 结束时自动退订并关闭通道；types 为空表示订阅全部
func (h *Hub) Subscribe(ctx context.Context, buffer int, types ...string) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	sub := subscription{}
	if len(types) > 0 {
		sub.types = make(map[string]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	h.mu.Lock()
	h.subs[ch] = sub
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// SubscriberCount 当前订阅者数量
func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
