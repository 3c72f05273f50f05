package storage

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"smartai-dashboard/internal/metrics"
	"smartai-dashboard/internal/models"
)

// Uploader хранилище объектов
type Uploader interface {
	PutObject(ctx context.Context, bucket, object string, data []byte, contentType string) error
}

// Archive сохраняет кадры с детекциями, не чаще одного за интервал
type Archive struct {
	uploader Uploader
	bucket   string
	limiter  *rate.Limiter
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewArchive создает архив снимков
func NewArchive(uploader Uploader, bucket string, interval time.Duration) *Archive {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Archive{
		uploader: uploader,
		bucket:   bucket,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  10 * time.Second,
	}
}

// OnDetections кодирует кадр и загружает его в фоне
func (a *Archive) OnDetections(_ context.Context, event models.DetectionEvent) {
	if event.Frame == nil || !a.limiter.Allow() {
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, event.Frame, &jpeg.Options{Quality: 85}); err != nil {
		metrics.SnapshotUploads.WithLabelValues("error").Inc()
		log.Printf("archive: encode snapshot: %v", err)
		return
	}

	object := ObjectName(event)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.uploader.PutObject(ctx, a.bucket, object, buf.Bytes(), "image/jpeg"); err != nil {
			metrics.SnapshotUploads.WithLabelValues("error").Inc()
			log.Printf("archive: upload %s: %v", object, err)
			return
		}
		metrics.SnapshotUploads.WithLabelValues("success").Inc()
	}()
}

// Wait ждет завершения начатых загрузок
func (a *Archive) Wait() {
	a.wg.Wait()
}

// ObjectName путь объекта: yyyy/mm/dd/{unixnano}_{labels}.jpg
func ObjectName(event models.DetectionEvent) string {
	labels := lo.Map(lo.Uniq(event.Labels), func(l string, _ int) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(l)), " ", "_")
	})
	suffix := strings.Join(labels, "-")
	if suffix == "" {
		suffix = "frame"
	}
	ts := event.Timestamp.UTC()
	return fmt.Sprintf("%s/%d_%s.jpg", ts.Format("2006/01/02"), ts.UnixNano(), suffix)
}
