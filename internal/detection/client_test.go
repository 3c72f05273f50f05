package detection

import (
	"context"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartai-dashboard/internal/models"
)

func TestClientDetect(t *testing.T) {
	var gotModel string
	var gotSize int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %v, want /predict", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		gotModel = r.FormValue("model")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		defer file.Close()
		if header.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("part Content-Type = %v", header.Header.Get("Content-Type"))
		}
		data, _ := io.ReadAll(file)
		gotSize = len(data)

		json.NewEncoder(w).Encode([]models.Detection{
			{Class: "person", Score: 0.91, Box: []float64{1, 2, 3, 4}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "yolo11n.pt")
	detections, err := c.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 32, 24)))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if gotModel != "yolo11n.pt" {
		t.Errorf("model field = %v, want yolo11n.pt", gotModel)
	}
	if gotSize == 0 {
		t.Error("uploaded image is empty")
	}
	if len(detections) != 1 || detections[0].Class != "person" {
		t.Errorf("detections = %+v", detections)
	}
	if r := detections[0].Rect(); r != image.Rect(1, 2, 3, 4) {
		t.Errorf("Rect() = %v", r)
	}
}

func TestClientDetectBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8))); err == nil {
		t.Error("Detect() error = nil, want error")
	}
}
