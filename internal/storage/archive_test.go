package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"smartai-dashboard/internal/models"
)

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeUploader) PutObject(_ context.Context, bucket, object string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[bucket+"/"+object] = data
	return nil
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func event(ts time.Time, labels ...string) models.DetectionEvent {
	return models.DetectionEvent{
		Timestamp: ts,
		Labels:    labels,
		Frame:     image.NewRGBA(image.Rect(0, 0, 16, 16)),
	}
}

func TestArchiveUploadsJPEG(t *testing.T) {
	up := &fakeUploader{}
	a := NewArchive(up, "camera-events", 0)

	a.OnDetections(context.Background(), event(time.Unix(1760000000, 0), "person"))
	a.Wait()

	if up.count() != 1 {
		t.Fatalf("uploads = %d, want 1", up.count())
	}
	for key, data := range up.objects {
		if !strings.HasPrefix(key, "camera-events/2025/10/09/") {
			t.Errorf("object key = %v", key)
		}
		if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
			t.Error("uploaded data is not a JPEG")
		}
	}
}

func TestArchiveThrottles(t *testing.T) {
	up := &fakeUploader{}
	a := NewArchive(up, "camera-events", time.Hour)

	base := time.Unix(1760000000, 0)
	for i := 0; i < 5; i++ {
		a.OnDetections(context.Background(), event(base.Add(time.Duration(i)*time.Millisecond), "person"))
	}
	a.Wait()

	if up.count() != 1 {
		t.Errorf("uploads = %d, want 1", up.count())
	}
}

func TestArchiveUploadFailureIsSwallowed(t *testing.T) {
	up := &fakeUploader{err: errors.New("bucket missing")}
	a := NewArchive(up, "camera-events", 0)

	a.OnDetections(context.Background(), event(time.Unix(1760000000, 0), "cup"))
	a.Wait()

	if up.count() != 0 {
		t.Errorf("uploads = %d, want 0", up.count())
	}
}

func TestArchiveSkipsEventWithoutFrame(t *testing.T) {
	up := &fakeUploader{}
	a := NewArchive(up, "camera-events", 0)

	a.OnDetections(context.Background(), models.DetectionEvent{Labels: []string{"cup"}})
	a.Wait()

	if up.count() != 0 {
		t.Errorf("uploads = %d, want 0", up.count())
	}
}

func TestObjectName(t *testing.T) {
	ts := time.Date(2026, 10, 15, 8, 0, 0, 5, time.UTC)
	got := ObjectName(models.DetectionEvent{Timestamp: ts, Labels: []string{"cell phone", "person", "cell phone"}})
	want := "2026/10/15/1792051200000000005_cell_phone-person.jpg"
	if got != want {
		t.Errorf("ObjectName() = %v, want %v", got, want)
	}
}
