package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrNotConfigured нет ключа языковой модели
var ErrNotConfigured = errors.New("language model not configured")

// LanguageModel облачная языковая модель
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini клиент Gemini API на официальном SDK
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini создает клиент; пустой apiKey дает ErrNotConfigured при вызове
func NewGemini(ctx context.Context, apiKey, model, endpoint string, timeout time.Duration) (*Gemini, error) {
	g := &Gemini{model: model}
	if apiKey == "" {
		return g, nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimRight(endpoint, "/"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Generate отправляет prompt и возвращает текст первого кандидата
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", ErrNotConfigured
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
