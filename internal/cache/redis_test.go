package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"smartai-dashboard/internal/models"
)

// setupMiniredis запускает miniredis и возвращает подключенный кэш
func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), mr.Addr(), "", 0, time.Hour)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return mr, c
}

func TestStoreSnapshot(t *testing.T) {
	mr, c := setupMiniredis(t)
	ts := time.Unix(1760000000, 0)

	err := c.StoreSnapshot(context.Background(), ts, models.Snapshot{CPUPercent: 12.5, Alert: "✅ Normal"})
	if err != nil {
		t.Fatalf("StoreSnapshot() error = %v", err)
	}

	if !mr.Exists("snapshot:1760000000") {
		t.Fatal("snapshot key not stored")
	}
	if ttl := mr.TTL("snapshot:1760000000"); ttl != time.Hour {
		t.Errorf("TTL = %v, want %v", ttl, time.Hour)
	}
}

func TestDetectionEventsNewestFirst(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()
	base := time.Unix(1760000000, 0)

	for i, label := range []string{"cup", "person", "laptop"} {
		event := models.DetectionEvent{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Labels:    []string{label},
		}
		if err := c.StoreDetectionEvent(ctx, event); err != nil {
			t.Fatalf("StoreDetectionEvent() error = %v", err)
		}
	}

	events, err := c.GetRecentDetectionEvents(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentDetectionEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Labels[0] != "laptop" || events[1].Labels[0] != "person" {
		t.Errorf("events = %+v, want laptop then person", events)
	}
}

func TestDetectionEventsEmpty(t *testing.T) {
	_, c := setupMiniredis(t)

	events, err := c.GetRecentDetectionEvents(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetRecentDetectionEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestExpiredEventSkipped(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()
	event := models.DetectionEvent{Timestamp: time.Unix(1760000000, 0), Labels: []string{"cup"}}

	if err := c.StoreDetectionEvent(ctx, event); err != nil {
		t.Fatalf("StoreDetectionEvent() error = %v", err)
	}
	mr.Del("detection:1760000000000000000")

	events, err := c.GetRecentDetectionEvents(ctx, 5)
	if err != nil {
		t.Fatalf("GetRecentDetectionEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestNewRedisCacheUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisCache(context.Background(), addr, "", 0, time.Hour); err == nil {
		t.Error("NewRedisCache() error = nil, want connection error")
	}
}

func TestPingAndStats(t *testing.T) {
	_, c := setupMiniredis(t)

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if stats := c.GetStats(); stats.TotalConns == 0 {
		t.Errorf("GetStats().TotalConns = %v, want > 0", stats.TotalConns)
	}
}

func TestDetectionIndexPrunedPastTTL(t *testing.T) {
	mr, c := setupMiniredis(t)
	base := time.Unix(1760000000, 0)

	for i := 0; i < 5; i++ {
		if i > 0 {
			mr.FastForward(50 * time.Minute)
		}
		event := models.DetectionEvent{
			Timestamp: base.Add(time.Duration(i) * 50 * time.Minute),
			Labels:    []string{"person"},
			Persons:   1,
		}
		if err := c.StoreDetectionEvent(context.Background(), event); err != nil {
			t.Fatalf("StoreDetectionEvent() error = %v", err)
		}
	}

	live := 0
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "detection:") {
			live++
		}
	}
	members, err := mr.ZMembers(detectionListKey)
	if err != nil {
		t.Fatalf("ZMembers() error = %v", err)
	}
	if live != 2 {
		t.Errorf("live detection keys = %d, want 2", live)
	}
	if len(members) != live {
		t.Errorf("index size = %d, want %d", len(members), live)
	}
}
