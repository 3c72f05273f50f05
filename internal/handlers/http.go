package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartai-dashboard/internal/alert"
	"smartai-dashboard/internal/camera"
	"smartai-dashboard/internal/devices"
	"smartai-dashboard/internal/metrics"
	"smartai-dashboard/internal/models"
	"smartai-dashboard/internal/web"
)

const defaultHistoryLimit = 20

// SnapshotSource телеметрия хоста
type SnapshotSource interface {
	Snapshot(ctx context.Context) models.Snapshot
}

// FrameSource открывает поток кадров на одно соединение
type FrameSource interface {
	Open(ctx context.Context) camera.FrameStream
}

// Assistant отвечает на текстовый запрос
type Assistant interface {
	Answer(ctx context.Context, query string) string
}

// History необязательная история в Redis
type History interface {
	StoreSnapshot(ctx context.Context, timestamp time.Time, snap models.Snapshot) error
	GetRecentDetectionEvents(ctx context.Context, limit int) ([]models.DetectionEvent, error)
	Ping(ctx context.Context) error
	GetStats() models.RedisStats
}

// Handler обработчик HTTP запросов
type Handler struct {
	telemetry SnapshotSource
	alerts    *alert.State
	frames    FrameSource
	assistant Assistant
	devices   *devices.Store
	history   History
}

// NewHandler создает новый обработчик; history может быть nil
func NewHandler(telemetry SnapshotSource, alerts *alert.State, frames FrameSource, assistant Assistant, store *devices.Store, history History) *Handler {
	return &Handler{
		telemetry: telemetry,
		alerts:    alerts,
		frames:    frames,
		assistant: assistant,
		devices:   store,
		history:   history,
	}
}

// NewRouter регистрирует маршруты дашборда
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", h.Dashboard).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/camera_feed", h.CameraFeed).Methods(http.MethodGet)
	router.HandleFunc("/get_alert", h.GetAlert).Methods(http.MethodGet)
	router.HandleFunc("/assistant", h.Assistant).Methods(http.MethodPost)
	router.HandleFunc("/toggle/{device}", h.Toggle).Methods(http.MethodPost)
	router.HandleFunc("/history/detections", h.DetectionHistory).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(web.Static())

	// Prometheus metrics endpoint
	router.Handle("/prometheus", promhttp.Handler())

	return router
}

// Dashboard обрабатывает GET /
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(r.Method, "/").Observe(time.Since(start).Seconds())
	}()

	data := web.DashboardData{}
	states := h.devices.States()
	for _, id := range h.devices.IDs() {
		data.Devices = append(data.Devices, web.Device{ID: id, State: string(states[id])})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.RenderDashboard(w, data); err != nil {
		metrics.RequestsTotal.WithLabelValues(r.Method, "/", "500").Inc()
		log.Printf("Dashboard render error: %v", err)
		return
	}
	metrics.RequestsTotal.WithLabelValues(r.Method, "/", "200").Inc()
}

// Health обрабатывает GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(r.Method, "/health").Observe(time.Since(start).Seconds())
	}()

	snap := h.telemetry.Snapshot(r.Context())
	h.alerts.Set(alert.SourceHealth, snap.Alert)

	metrics.HostUsage.WithLabelValues("cpu").Set(snap.CPUPercent)
	metrics.HostUsage.WithLabelValues("memory").Set(snap.Memory)
	metrics.HostUsage.WithLabelValues("disk").Set(snap.Disk)

	// Сохраняем в Redis (асинхронно, не блокируем ответ)
	if h.history != nil {
		go func(s models.Snapshot) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := h.history.StoreSnapshot(ctx, time.Now(), s); err != nil {
				log.Printf("history: store snapshot: %v", err)
			}
		}(snap)
	}

	metrics.RequestsTotal.WithLabelValues(r.Method, "/health", "200").Inc()
	writeJSON(w, http.StatusOK, snap)
}

// CameraFeed обрабатывает GET /camera_feed, поток идет до отключения клиента
func (h *Handler) CameraFeed(w http.ResponseWriter, r *http.Request) {
	stream := h.frames.Open(r.Context())
	defer stream.Close()

	session := uuid.NewString()
	mode := stream.Mode()
	metrics.ActiveStreams.WithLabelValues(mode).Inc()
	defer metrics.ActiveStreams.WithLabelValues(mode).Dec()
	metrics.RequestsTotal.WithLabelValues(r.Method, "/camera_feed", "200").Inc()
	log.Printf("Camera stream %s opened (%s)", session, mode)

	// Поток бесконечный, WriteTimeout сервера к нему не применяется
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("Camera stream %s: clear write deadline: %v", session, err)
	}

	w.Header().Set("Content-Type", camera.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	frames := 0
	for {
		chunk, err := stream.Next(r.Context())
		if err != nil {
			break
		}
		if _, err := w.Write(chunk); err != nil {
			break
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			break
		}
		metrics.FramesStreamed.WithLabelValues(mode).Inc()
		frames++
	}

	log.Printf("Camera stream %s closed after %d frames", session, frames)
}

// GetAlert обрабатывает GET /get_alert
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(r.Method, "/get_alert").Observe(time.Since(start).Seconds())
	}()

	metrics.RequestsTotal.WithLabelValues(r.Method, "/get_alert", "200").Inc()
	writeJSON(w, http.StatusOK, models.AlertResponse{Alert: h.alerts.Get()})
}

// Assistant обрабатывает POST /assistant
func (h *Handler) Assistant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(r.Method, "/assistant").Observe(time.Since(start).Seconds())
	}()

	// Невалидное или пустое тело трактуется как пустой запрос
	var req models.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Query = ""
	}

	reply := h.assistant.Answer(r.Context(), req.Query)

	metrics.RequestsTotal.WithLabelValues(r.Method, "/assistant", "200").Inc()
	writeJSON(w, http.StatusOK, models.AssistantResponse{Reply: reply})
}

// Toggle обрабатывает POST /toggle/{device}
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(r.Method, "/toggle").Observe(time.Since(start).Seconds())
	}()

	device := mux.Vars(r)["device"]
	state, err := h.devices.Toggle(device)
	if errors.Is(err, devices.ErrNotFound) {
		metrics.RequestsTotal.WithLabelValues(r.Method, "/toggle", "404").Inc()
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Device not found"})
		return
	}

	metrics.RequestsTotal.WithLabelValues(r.Method, "/toggle", "200").Inc()
	writeJSON(w, http.StatusOK, map[string]devices.State{device: state})
}

// DetectionHistory обрабатывает GET /history/detections
func (h *Handler) DetectionHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(r.Method, "/history/detections").Observe(time.Since(start).Seconds())
	}()

	if h.history == nil {
		metrics.RequestsTotal.WithLabelValues(r.Method, "/history/detections", "503").Inc()
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "History is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			metrics.RequestsTotal.WithLabelValues(r.Method, "/history/detections", "400").Inc()
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	events, err := h.history.GetRecentDetectionEvents(r.Context(), limit)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(r.Method, "/history/detections", "500").Inc()
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to retrieve history"})
		return
	}
	if events == nil {
		events = []models.DetectionEvent{}
	}

	metrics.RequestsTotal.WithLabelValues(r.Method, "/history/detections", "200").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

// GetStats обрабатывает GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(r.Method, "/stats").Observe(time.Since(start).Seconds())
	}()

	resp := map[string]interface{}{
		"alert":     h.alerts.Get(),
		"devices":   h.devices.States(),
		"history":   h.history != nil,
		"timestamp": time.Now(),
	}

	// Проверяем Redis
	if h.history != nil {
		resp["redis_ok"] = h.history.Ping(r.Context()) == nil
		resp["redis"] = h.history.GetStats()
	}

	metrics.RequestsTotal.WithLabelValues(r.Method, "/stats", "200").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
