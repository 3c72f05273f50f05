package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartai-dashboard/internal/alert"
	"smartai-dashboard/internal/assistant"
	"smartai-dashboard/internal/cache"
	"smartai-dashboard/internal/camera"
	"smartai-dashboard/internal/config"
	"smartai-dashboard/internal/detection"
	"smartai-dashboard/internal/devices"
	"smartai-dashboard/internal/handlers"
	"smartai-dashboard/internal/metrics"
	"smartai-dashboard/internal/storage"
	"smartai-dashboard/internal/telemetry"
)

func main() {
	log.Println("Starting SmartAI Dashboard...")

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	alerts := alert.NewState()
	collector := telemetry.NewCollector(telemetry.NewHostProvider())

	// История в Redis необязательна
	var history handlers.History
	var redisCache *cache.RedisCache
	var sinks detection.Sinks
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.HistoryRetention())
		cancel()
		if err != nil {
			log.Printf("Redis unavailable, history disabled: %v", err)
		} else {
			defer rc.Close()
			redisCache = rc
			history = rc
			sinks = append(sinks, rc)
			log.Println("Connected to Redis")
		}
	}

	// Архив снимков в MinIO необязателен
	var archive *storage.Archive
	if cfg.Minio.Endpoint != "" {
		uploader, err := storage.NewMinioUploader(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Secure)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = uploader.EnsureBucket(ctx, cfg.Minio.Bucket)
			cancel()
		}
		if err != nil {
			log.Printf("MinIO unavailable, snapshot archive disabled: %v", err)
		} else {
			archive = storage.NewArchive(uploader, cfg.Minio.Bucket, cfg.Minio.Interval)
			sinks = append(sinks, archive)
			log.Printf("Snapshot archive enabled, bucket: %s", cfg.Minio.Bucket)
		}
	}

	var detector detection.Detector
	if !cfg.Detection.Disabled && cfg.Detection.Endpoint != "" {
		detector = detection.NewClient(cfg.Detection.Endpoint, cfg.Detection.Model)
	}
	overlay := detection.NewOverlay(detector, alerts, cfg.Detection.Threshold, sinks)

	var opener camera.Opener
	if !cfg.Camera.Disabled {
		opener = func() (camera.Source, error) {
			src, err := camera.OpenFFmpeg(cfg.Camera.FFmpeg, cfg.Camera.Index, cfg.Camera.Width, cfg.Camera.Height)
			if err != nil {
				return nil, err
			}
			return src, nil
		}
	}

	placeholder, err := camera.Placeholder(cfg.Camera.Width, cfg.Camera.Height)
	if err != nil {
		log.Fatalf("Failed to build placeholder frame: %v", err)
	}
	streamer := camera.NewStreamer(opener, overlay, placeholder, cfg.Camera.PlaceholderInterval)

	llm, err := assistant.NewGemini(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Endpoint, cfg.Gemini.Timeout)
	if err != nil {
		log.Fatalf("Failed to create language model client: %v", err)
	}
	bridge := assistant.NewBridge(llm, collector)

	// Инициализация HTTP handlers
	handler := handlers.NewHandler(collector, alerts, streamer, bridge, devices.NewStore(), history)
	router := handlers.NewRouter(handler)

	// HTTP сервер; /camera_feed снимает WriteTimeout для своего соединения
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server listening on %s (camera enabled: %t, detection enabled: %t)\n",
			cfg.Addr(), opener != nil, overlay.Enabled())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Периодическое обновление метрик
	go updateMetrics(collector, redisCache)

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if archive != nil {
		archive.Wait()
	}

	log.Println("Server stopped gracefully")
}

// updateMetrics периодически обновляет метрики хоста и пула Redis
func updateMetrics(collector *telemetry.Collector, redisCache *cache.RedisCache) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		snap := collector.Snapshot(ctx)
		cancel()

		metrics.HostUsage.WithLabelValues("cpu").Set(snap.CPUPercent)
		metrics.HostUsage.WithLabelValues("memory").Set(snap.Memory)
		metrics.HostUsage.WithLabelValues("disk").Set(snap.Disk)

		if redisCache != nil {
			stats := redisCache.GetStats()
			metrics.RedisPoolConns.WithLabelValues("total").Set(float64(stats.TotalConns))
			metrics.RedisPoolConns.WithLabelValues("idle").Set(float64(stats.IdleConns))
			metrics.RedisPoolConns.WithLabelValues("stale").Set(float64(stats.StaleConns))
		}
	}
}
