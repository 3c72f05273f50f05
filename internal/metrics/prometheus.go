package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration продолжительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// HostUsage последние значения загрузки хоста
	HostUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "host_usage_percent",
			Help: "Last observed host resource usage in percent",
		},
		[]string{"resource"},
	)

	// AlertUpdates записи в общий алерт
	AlertUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_updates_total",
			Help: "Total number of writes to the shared alert",
		},
		[]string{"source"},
	)

	// ActiveStreams открытые потоки камеры
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "camera_streams_active",
			Help: "Number of currently open camera streams",
		},
		[]string{"mode"},
	)

	// FramesStreamed отправленные кадры
	FramesStreamed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "camera_frames_streamed_total",
			Help: "Total number of multipart frames written",
		},
		[]string{"mode"},
	)

	// FramesSkipped кадры, пропущенные из-за ошибки кодирования
	FramesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_frames_skipped_total",
			Help: "Total number of frames skipped because encoding failed",
		},
	)

	// DetectionLatency задержка детекции
	DetectionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detection_latency_seconds",
			Help:    "Object detection latency in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// DetectionsAccepted принятые детекции по меткам
	DetectionsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detections_accepted_total",
			Help: "Total number of detections above the confidence threshold",
		},
		[]string{"label"},
	)

	// DetectionErrors ошибки детектора
	DetectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "detection_errors_total",
			Help: "Total number of failed detector calls",
		},
	)

	// AssistantReplies ответы ассистента по источнику
	AssistantReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_replies_total",
			Help: "Total number of assistant replies",
		},
		[]string{"source"},
	)

	// DeviceToggles переключения устройств
	DeviceToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_toggles_total",
			Help: "Total number of device toggles",
		},
		[]string{"device", "state"},
	)

	// RedisOperations операции с Redis
	RedisOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)

	// RedisPoolConns соединения пула Redis
	RedisPoolConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "redis_pool_connections",
			Help: "Redis connection pool connections by state",
		},
		[]string{"state"},
	)

	// SnapshotUploads загрузки снимков в хранилище
	SnapshotUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_uploads_total",
			Help: "Total number of camera snapshot uploads",
		},
		[]string{"status"},
	)
)
