package models

import (
	"image"
	"time"
)

// Snapshot срез телеметрии хоста для /health
type Snapshot struct {
	Time       string  `json:"time"`
	CPUPercent float64 `json:"cpu_percent"`
	Memory     float64 `json:"memory"`
	Disk       float64 `json:"disk"`
	OS         string  `json:"os"`
	Uptime     string  `json:"uptime"`
	Processes  int     `json:"processes"`
	NetSent    float64 `json:"net_sent"`
	NetRecv    float64 `json:"net_recv"`
	Alert      string  `json:"alert"`
}

// Detection один обнаруженный объект
type Detection struct {
	Class string    `json:"class"`
	Score float64   `json:"score"`
	Box   []float64 `json:"box"` // [x1, y1, x2, y2]
}

// Rect возвращает рамку детекции в пикселях
func (d Detection) Rect() image.Rectangle {
	if len(d.Box) < 4 {
		return image.Rectangle{}
	}
	return image.Rect(int(d.Box[0]), int(d.Box[1]), int(d.Box[2]), int(d.Box[3])).Canon()
}

// DetectionEvent кадр с принятыми детекциями
type DetectionEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Labels    []string    `json:"labels"`
	Persons   int         `json:"persons"`
	Alert     string      `json:"alert"`
	Frame     image.Image `json:"-"`
}

// AlertResponse ответ /get_alert
type AlertResponse struct {
	Alert string `json:"alert"`
}

// AssistantRequest тело POST /assistant
type AssistantRequest struct {
	Query string `json:"query"`
}

// AssistantResponse ответ ассистента
type AssistantResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse структурированная ошибка
type ErrorResponse struct {
	Error string `json:"error"`
}

// RedisStats статистика пула соединений Redis
type RedisStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}
