package detection

import (
	"context"
	"fmt"
	"image/draw"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"smartai-dashboard/internal/alert"
	"smartai-dashboard/internal/metrics"
	"smartai-dashboard/internal/models"
)

// DefaultThreshold минимальная уверенность для рамки
const DefaultThreshold = 0.45

const maxListedLabels = 4

// Sink получатель событий кадра с детекциями
type Sink interface {
	OnDetections(ctx context.Context, event models.DetectionEvent)
}

// Overlay накладывает детекции на кадр и обновляет алерт
type Overlay struct {
	detector  Detector
	alerts    *alert.State
	threshold float64
	sink      Sink
	now       func() time.Time
}

// NewOverlay создает оверлей; detector == nil отключает детекцию
func NewOverlay(detector Detector, alerts *alert.State, threshold float64, sink Sink) *Overlay {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Overlay{
		detector:  detector,
		alerts:    alerts,
		threshold: threshold,
		sink:      sink,
		now:       time.Now,
	}
}

// Enabled сконфигурирован ли детектор
func (o *Overlay) Enabled() bool {
	return o != nil && o.detector != nil
}

// Annotate рисует детекции на кадре.
// Ошибка детектора оставляет кадр и алерт без изменений.
func (o *Overlay) Annotate(ctx context.Context, frame draw.Image) draw.Image {
	if !o.Enabled() {
		return frame
	}

	start := time.Now()
	detections, err := o.detector.Detect(ctx, frame)
	metrics.DetectionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DetectionErrors.Inc()
		log.Printf("detection failed: %v", err)
		return frame
	}

	var labels []string
	persons := 0
	for _, d := range detections {
		if d.Score < o.threshold {
			continue
		}
		labels = append(labels, d.Class)

		r := d.Rect()
		drawBox(frame, r)
		drawLabel(frame, r, fmt.Sprintf("%s %.2f", d.Class, d.Score))

		if strings.EqualFold(d.Class, "person") {
			persons++
		}
		metrics.DetectionsAccepted.WithLabelValues(d.Class).Inc()
	}

	text := AlertFor(labels, persons)
	o.alerts.Set(alert.SourceDetection, text)

	if o.sink != nil && len(labels) > 0 {
		o.sink.OnDetections(ctx, models.DetectionEvent{
			Timestamp: o.now(),
			Labels:    labels,
			Persons:   persons,
			Alert:     text,
			Frame:     frame,
		})
	}
	return frame
}

// AlertFor текст алерта по принятым меткам
func AlertFor(labels []string, persons int) string {
	switch {
	case persons > 0:
		return fmt.Sprintf("⚠️ Person detected on camera (%d)", persons)
	case len(labels) > 0:
		distinct := lo.Uniq(labels)
		sort.Strings(distinct)
		if len(distinct) > maxListedLabels {
			distinct = distinct[:maxListedLabels]
		}
		return "⚠️ Objects detected: " + strings.Join(distinct, ", ")
	default:
		return alert.NoAlerts
	}
}

// Sinks рассылает событие всем получателям
type Sinks []Sink

// OnDetections передает событие каждому получателю по порядку
func (s Sinks) OnDetections(ctx context.Context, event models.DetectionEvent) {
	for _, sink := range s {
		sink.OnDetections(ctx, event)
	}
}
