package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"smartai-dashboard/internal/metrics"
	"smartai-dashboard/internal/models"
)

const detectionListKey = "detection_list"

// RedisCache история снимков телеметрии и событий детекции
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache создает новый Redis кэш
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	// Проверяем подключение
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// StoreSnapshot сохраняет срез телеметрии
func (r *RedisCache) StoreSnapshot(ctx context.Context, timestamp time.Time, snap models.Snapshot) error {
	key := fmt.Sprintf("snapshot:%d", timestamp.Unix())

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	err = r.client.Set(ctx, key, jsonData, r.ttl).Err()
	observe("store_snapshot", err)
	return err
}

// StoreDetectionEvent сохраняет событие детекции и индексирует его в sorted set
func (r *RedisCache) StoreDetectionEvent(ctx context.Context, event models.DetectionEvent) error {
	key := fmt.Sprintf("detection:%d", event.Timestamp.UnixNano())

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal detection event: %w", err)
	}

	score := float64(event.Timestamp.UnixNano())

	pipe := r.client.Pipeline()
	pipe.Set(ctx, key, jsonData, r.ttl)
	pipe.ZAdd(ctx, detectionListKey, redis.Z{Score: score, Member: key})
	// Члены индекса старше TTL указывают на истекшие ключи
	pipe.ZRemRangeByScore(ctx, detectionListKey, "-inf", strconv.FormatInt(event.Timestamp.Add(-r.ttl).UnixNano(), 10))
	pipe.Expire(ctx, detectionListKey, r.ttl)

	_, err = pipe.Exec(ctx)
	observe("store_detection", err)
	return err
}

// GetRecentDetectionEvents получает последние события, новые первыми
func (r *RedisCache) GetRecentDetectionEvents(ctx context.Context, limit int) ([]models.DetectionEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	keys, err := r.client.ZRevRange(ctx, detectionListKey, 0, int64(limit-1)).Result()
	if err != nil {
		observe("get_detections", err)
		return nil, fmt.Errorf("failed to get detection events: %w", err)
	}
	if len(keys) == 0 {
		return []models.DetectionEvent{}, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	observe("get_detections", err)
	if err != nil {
		return nil, fmt.Errorf("failed to load detection events: %w", err)
	}

	events := make([]models.DetectionEvent, 0, len(values))
	for _, v := range values {
		// Ключ мог истечь раньше индекса
		s, ok := v.(string)
		if !ok {
			continue
		}
		var event models.DetectionEvent
		if err := json.Unmarshal([]byte(s), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Close закрывает соединение с Redis
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Ping проверяет доступность Redis
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetStats статистика пула соединений
func (r *RedisCache) GetStats() models.RedisStats {
	stats := r.client.PoolStats()

	return models.RedisStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func observe(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RedisOperations.WithLabelValues(operation, status).Inc()
}

// OnDetections асинхронно пишет событие детекции, не блокируя поток камеры
func (r *RedisCache) OnDetections(_ context.Context, event models.DetectionEvent) {
	go func(e models.DetectionEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.StoreDetectionEvent(ctx, e); err != nil {
			log.Printf("history: store detection event: %v", err)
		}
	}(event)
}
