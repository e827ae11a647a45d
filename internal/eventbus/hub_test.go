package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all := h.Subscribe(ctx, 4)
	imports := h.Subscribe(ctx, 4, TypeBenchmarkImported)

	h.Publish(Event{Type: TypeAggregationFailed})
	h.Publish(Event{Type: TypeBenchmarkImported, Data: map[string]any{"success": 2}})

	first := <-all
	if first.Type != TypeAggregationFailed || first.Timestamp == 0 {
		t.Fatalf("first=%+v", first)
	}
	if second := <-all; second.Type != TypeBenchmarkImported {
		t.Fatalf("second=%+v", second)
	}

	got := <-imports
	if got.Type != TypeBenchmarkImported || got.Data["success"] != 2 {
		t.Fatalf("filtered=%+v", got)
	}
	select {
	case extra := <-imports:
		t.Fatalf("unexpected event %+v", extra)
	default:
	}
}

func TestHubDropsForSlowConsumer(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx, 1)
	h.Publish(Event{Type: TypeImportFailed})
	h.Publish(Event{Type: TypeImportFailed}) // 缓冲已满，丢弃

	<-ch
	select {
	case evt := <-ch:
		t.Fatalf("expected drop, got %+v", evt)
	default:
	}
}

func TestHubUnsubscribeOnCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Subscribe(ctx, 1)
	if h.SubscriberCount() != 1 {
		t.Fatalf("subscribers=%d, want 1", h.SubscriberCount())
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}
	if h.SubscriberCount() != 0 {
		t.Fatalf("subscribers=%d, want 0", h.SubscriberCount())
	}

	var nilHub *Hub
	nilHub.Publish(Event{Type: TypeImportFailed})
}
