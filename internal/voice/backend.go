package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const noBackendReply = "No reply from backend."

// HTTPBackend клиент POST /assistant
type HTTPBackend struct {
	URL        string
	httpClient *http.Client
}

// NewHTTPBackend создает клиента с фиксированным таймаутом
func NewHTTPBackend(url string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		URL:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ask отправляет распознанный текст, любая ошибка превращается в текст ответа
func (b *HTTPBackend) Ask(ctx context.Context, text string) string {
	reply, err := b.ask(ctx, text)
	if err != nil {
		return fmt.Sprintf("Backend error: %v", err)
	}
	return reply
}

func (b *HTTPBackend) ask(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"query": text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var data struct {
		Reply *string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	if data.Reply == nil {
		return noBackendReply, nil
	}
	return *data.Reply, nil
}
