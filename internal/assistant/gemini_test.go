package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGemini(t *testing.T, url string) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), "key", "gemini-1.5-flash", url, 0)
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	return g
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-1.5-flash:generateContent") {
			t.Errorf("path = %v", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("request = %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi "},{"text":"there"}]}}]}`))
	}))
	defer srv.Close()

	got, err := newTestGemini(t, srv.URL).Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Hi there" {
		t.Errorf("Generate() = %q, want %q", got, "Hi there")
	}
}

func TestGeminiAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv.URL).Generate(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("Generate() error = %v, want API error message", err)
	}
}

func TestGeminiNotConfigured(t *testing.T) {
	g, err := NewGemini(context.Background(), "", "gemini-1.5-flash", "http://127.0.0.1:1", 0)
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	if _, err := g.Generate(context.Background(), "hello"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Generate() error = %v, want %v", err, ErrNotConfigured)
	}
}
