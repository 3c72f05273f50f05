package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr() != "127.0.0.1:5000" {
		t.Errorf("Addr() = %v, want %v", cfg.Addr(), "127.0.0.1:5000")
	}
	if cfg.Camera.Disabled {
		t.Error("Camera.Disabled = true, want false")
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 {
		t.Errorf("Camera resolution = %dx%d, want 640x480", cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Detection.Threshold != 0.45 {
		t.Errorf("Detection.Threshold = %v, want 0.45", cfg.Detection.Threshold)
	}
	if cfg.Detection.Model != "yolo11n.pt" {
		t.Errorf("Detection.Model = %v, want yolo11n.pt", cfg.Detection.Model)
	}
	if cfg.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("Gemini.Model = %v, want gemini-1.5-flash", cfg.Gemini.Model)
	}
	if cfg.HistoryRetention() != time.Hour {
		t.Errorf("HistoryRetention() = %v, want %v", cfg.HistoryRetention(), time.Hour)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("HOST_PUBLIC", "1")
	t.Setenv("DISABLE_CAMERA", "1")
	t.Setenv("CAMERA_INDEX", "2")
	t.Setenv("DISABLE_YOLO", "0")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8081" {
		t.Errorf("Addr() = %v, want %v", cfg.Addr(), "0.0.0.0:8081")
	}
	if !cfg.Camera.Disabled {
		t.Error("Camera.Disabled = false, want true")
	}
	if cfg.Camera.Index != 2 {
		t.Errorf("Camera.Index = %v, want 2", cfg.Camera.Index)
	}
	if cfg.Detection.Disabled {
		t.Error("Detection.Disabled = true, want false")
	}
	if cfg.Gemini.APIKey != "secret" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Gemini.APIKey, "secret")
	}
}

func TestLoadYAMLWithEnvPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.yaml")
	data := []byte(`
server:
  port: 7000
camera:
  index: 3
gemini:
  model: gemini-pro
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GEMINI_MODEL_NAME", "gemini-2.0-flash")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %v, want 7000", cfg.Server.Port)
	}
	if cfg.Camera.Index != 3 {
		t.Errorf("Camera.Index = %v, want 3", cfg.Camera.Index)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Gemini.Model = %v, want gemini-2.0-flash", cfg.Gemini.Model)
	}
	// незаданные в файле поля получают значения по умолчанию
	if cfg.Camera.Width != 640 {
		t.Errorf("Camera.Width = %v, want 640", cfg.Camera.Width)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port out of range", key: "PORT", val: "70000"},
		{name: "threshold above one", key: "DETECTION_THRESHOLD", val: "1.5"},
		{name: "port not a number", key: "PORT", val: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(""); err == nil {
				t.Errorf("Load() with %s=%s error = nil, want error", tt.key, tt.val)
			}
		})
	}
}

func TestLoadAgentDefaults(t *testing.T) {
	cfg, err := LoadAgent("")
	if err != nil {
		t.Fatalf("LoadAgent() error = %v", err)
	}

	if cfg.AssistantURL != "http://127.0.0.1:5000/assistant" {
		t.Errorf("AssistantURL = %v", cfg.AssistantURL)
	}
	if cfg.WakeWord != "computer" {
		t.Errorf("WakeWord = %v, want computer", cfg.WakeWord)
	}
	if cfg.BackendTimeout != 20*time.Second {
		t.Errorf("BackendTimeout = %v, want 20s", cfg.BackendTimeout)
	}
	if cfg.AccessKey != "" {
		t.Errorf("AccessKey = %q, want empty", cfg.AccessKey)
	}
}
