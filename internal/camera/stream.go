package camera

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"log"
	"sync"
	"time"

	"smartai-dashboard/internal/detection"
	"smartai-dashboard/internal/metrics"
)

const (
	// Boundary граница частей multipart
	Boundary = "frame"
	// ContentType тип ответа /camera_feed
	ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

	ModeLive        = "live"
	ModePlaceholder = "placeholder"
)

var (
	partHeader = []byte("--" + Boundary + "\r\nContent-Type: image/jpeg\r\n\r\n")
	partTail   = []byte("\r\n")
)

// Chunk оборачивает JPEG в одну часть multipart
func Chunk(jpegData []byte) []byte {
	out := make([]byte, 0, len(partHeader)+len(jpegData)+len(partTail))
	out = append(out, partHeader...)
	out = append(out, jpegData...)
	return append(out, partTail...)
}

// FrameStream последовательность частей multipart.
// Next возвращает io.EOF, когда камера перестала отдавать кадры.
type FrameStream interface {
	Next(ctx context.Context) ([]byte, error)
	Mode() string
	Close() error
}

// Encoder кодирует кадр в JPEG
type Encoder func(w io.Writer, img image.Image) error

// EncodeJPEG кодировщик по умолчанию
func EncodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 80})
}

// Streamer выбирает ветку потока при открытии
type Streamer struct {
	open        Opener
	overlay     *detection.Overlay
	placeholder []byte
	interval    time.Duration
	encode      Encoder
}

// NewStreamer создает стример; open == nil означает, что камера отключена
func NewStreamer(open Opener, overlay *detection.Overlay, placeholder []byte, interval time.Duration) *Streamer {
	return &Streamer{
		open:        open,
		overlay:     overlay,
		placeholder: Chunk(placeholder),
		interval:    interval,
		encode:      EncodeJPEG,
	}
}

// Open выбирает ветку один раз на поток
func (s *Streamer) Open(ctx context.Context) FrameStream {
	if s.open == nil {
		return s.placeholderStream()
	}

	source, err := s.open()
	if err != nil {
		log.Printf("camera: open failed, streaming placeholder: %v", err)
		return s.placeholderStream()
	}

	// Тестовое чтение: камера открылась, но может не отдавать кадры
	if _, err := source.Read(); err != nil {
		log.Printf("camera: test read failed, streaming placeholder: %v", err)
		_ = source.Close()
		return s.placeholderStream()
	}

	return &liveStream{
		source:  source,
		overlay: s.overlay,
		encode:  s.encode,
	}
}

func (s *Streamer) placeholderStream() FrameStream {
	return &placeholderStream{chunk: s.placeholder, interval: s.interval}
}

type placeholderStream struct {
	chunk    []byte
	interval time.Duration
}

func (p *placeholderStream) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.interval > 0 {
		timer := time.NewTimer(p.interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return p.chunk, nil
}

func (p *placeholderStream) Mode() string { return ModePlaceholder }

func (p *placeholderStream) Close() error { return nil }

type liveStream struct {
	source    Source
	overlay   *detection.Overlay
	encode    Encoder
	buf       bytes.Buffer
	closeOnce sync.Once
}

func (l *liveStream) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := l.source.Read()
		if err != nil {
			log.Printf("camera: read failed, ending stream: %v", err)
			_ = l.Close()
			return nil, io.EOF
		}

		if l.overlay.Enabled() {
			frame = l.overlay.Annotate(ctx, frame)
		}

		l.buf.Reset()
		if err := l.encode(&l.buf, frame); err != nil {
			metrics.FramesSkipped.Inc()
			continue
		}
		return Chunk(l.buf.Bytes()), nil
	}
}

func (l *liveStream) Mode() string { return ModeLive }

func (l *liveStream) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.source.Close()
	})
	return err
}
