package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config конфигурация сервера дашборда
type Config struct {
	Server struct {
		Host       string `yaml:"host" env:"HOST" envDefault:"127.0.0.1"`
		HostPublic bool   `yaml:"host_public" env:"HOST_PUBLIC"`
		Port       int    `yaml:"port" env:"PORT" envDefault:"5000"`
	} `yaml:"server"`

	Camera struct {
		Disabled            bool          `yaml:"disabled" env:"DISABLE_CAMERA"`
		Index               int           `yaml:"index" env:"CAMERA_INDEX" envDefault:"0"`
		Width               int           `yaml:"width" env:"CAMERA_WIDTH" envDefault:"640"`
		Height              int           `yaml:"height" env:"CAMERA_HEIGHT" envDefault:"480"`
		FFmpeg              string        `yaml:"ffmpeg" env:"CAMERA_FFMPEG" envDefault:"ffmpeg"`
		PlaceholderInterval time.Duration `yaml:"placeholder_interval" env:"PLACEHOLDER_INTERVAL" envDefault:"0s"`
	} `yaml:"camera"`

	Detection struct {
		Disabled  bool    `yaml:"disabled" env:"DISABLE_YOLO"`
		Model     string  `yaml:"model" env:"YOLO_MODEL_PATH" envDefault:"yolo11n.pt"`
		Endpoint  string  `yaml:"endpoint" env:"DETECTION_ENDPOINT"`
		Threshold float64 `yaml:"threshold" env:"DETECTION_THRESHOLD" envDefault:"0.45"`
	} `yaml:"detection"`

	Gemini struct {
		APIKey   string        `yaml:"api_key" env:"GEMINI_API_KEY"`
		Model    string        `yaml:"model" env:"GEMINI_MODEL_NAME" envDefault:"gemini-1.5-flash"`
		Endpoint string        `yaml:"endpoint" env:"GEMINI_ENDPOINT" envDefault:"https://generativelanguage.googleapis.com"`
		Timeout  time.Duration `yaml:"timeout" env:"GEMINI_TIMEOUT" envDefault:"30s"`
	} `yaml:"gemini"`

	Redis struct {
		Addr           string `yaml:"addr" env:"REDIS_ADDR"`
		Password       string `yaml:"password" env:"REDIS_PASSWORD"`
		DB             int    `yaml:"db" env:"REDIS_DB" envDefault:"0"`
		RetentionHours int    `yaml:"retention_hours" env:"HISTORY_RETENTION_HOURS" envDefault:"1"`
	} `yaml:"redis"`

	Minio struct {
		Endpoint  string        `yaml:"endpoint" env:"MINIO_ENDPOINT"`
		AccessKey string        `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
		SecretKey string        `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
		Bucket    string        `yaml:"bucket" env:"MINIO_BUCKET" envDefault:"camera-events"`
		Secure    bool          `yaml:"secure" env:"MINIO_SECURE"`
		Interval  time.Duration `yaml:"interval" env:"SNAPSHOT_INTERVAL" envDefault:"10s"`
	} `yaml:"minio"`
}

// AgentConfig конфигурация голосового агента
type AgentConfig struct {
	AccessKey      string        `yaml:"access_key" env:"PORCUPINE_KEY"`
	WakeWord       string        `yaml:"wake_word" env:"WAKE_WORD" envDefault:"computer"`
	AssistantURL   string        `yaml:"assistant_url" env:"ASSISTANT_URL" envDefault:"http://127.0.0.1:5000/assistant"`
	AudioDevice    string        `yaml:"audio_device" env:"AUDIO_DEVICE" envDefault:"default"`
	STTCommand     string        `yaml:"stt_command" env:"STT_COMMAND"`
	STTLanguage    string        `yaml:"stt_language" env:"STT_LANGUAGE" envDefault:"hi-IN"`
	TTSCommand     string        `yaml:"tts_command" env:"TTS_COMMAND" envDefault:"espeak-ng"`
	TTSRate        int           `yaml:"tts_rate" env:"TTS_RATE" envDefault:"175"`
	BackendTimeout time.Duration `yaml:"backend_timeout" env:"BACKEND_TIMEOUT" envDefault:"20s"`
}

// Addr адрес для http.Server
func (c *Config) Addr() string {
	host := c.Server.Host
	if c.Server.HostPublic {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, c.Server.Port)
}

// HistoryRetention время жизни записей истории
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.Redis.RetentionHours) * time.Hour
}

// Load читает YAML (если указан) и накладывает переменные окружения
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := load(path, cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0 {
		return nil, fmt.Errorf("invalid camera resolution: %dx%d", cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Detection.Threshold < 0 || cfg.Detection.Threshold > 1 {
		return nil, fmt.Errorf("invalid detection threshold: %v", cfg.Detection.Threshold)
	}
	return cfg, nil
}

// LoadAgent читает конфигурацию голосового агента
func LoadAgent(path string) (*AgentConfig, error) {
	cfg := &AgentConfig{}
	if err := load(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string, cfg any) error {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// Переменные окружения с приоритетом, envDefault только для незаданных полей
	if err := env.ParseWithOptions(cfg, env.Options{SetDefaultsForZeroValuesOnly: true}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
