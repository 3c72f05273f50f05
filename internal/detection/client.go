package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"smartai-dashboard/internal/models"
)

// Detector детектор объектов на кадре
type Detector interface {
	Detect(ctx context.Context, frame image.Image) ([]models.Detection, error)
}

// Client HTTP клиент сервиса детекции (/predict)
type Client struct {
	URL        string
	Model      string
	httpClient *http.Client
}

// NewClient создает клиент детекции
func NewClient(baseURL, model string) *Client {
	return &Client{
		URL:        strings.TrimRight(baseURL, "/"),
		Model:      model,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Detect отправляет кадр JPEG на /predict и возвращает детекции
func (c *Client) Detect(ctx context.Context, frame image.Image) ([]models.Detection, error) {
	var img bytes.Buffer
	if err := jpeg.Encode(&img, frame, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Создаем form field с правильным Content-Type
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", "image/jpeg")

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(img.Bytes()); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}
	if c.Model != "" {
		if err := writer.WriteField("model", c.Model); err != nil {
			return nil, fmt.Errorf("write model field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("bad status: %s, error: %s", resp.Status, bodyBytes)
	}

	var detections []models.Detection
	if err := json.NewDecoder(resp.Body).Decode(&detections); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	return detections, nil
}
