package alert

import (
	"sync/atomic"

	"smartai-dashboard/internal/metrics"
)

const (
	// NoAlerts начальное значение
	NoAlerts = "✅ No alerts"

	SourceHealth    = "health"
	SourceDetection = "detection"
)

// State общий алерт процесса.
// Писатели не согласуются: побеждает последняя запись.
type State struct {
	value atomic.Pointer[string]
}

// NewState создает ячейку с начальным значением
func NewState() *State {
	s := &State{}
	initial := NoAlerts
	s.value.Store(&initial)
	return s
}

// Get возвращает текущий алерт
func (s *State) Get() string {
	return *s.value.Load()
}

// Set перезаписывает алерт
func (s *State) Set(source, text string) {
	s.value.Store(&text)
	metrics.AlertUpdates.WithLabelValues(source).Inc()
}
