package voice

import (
	"errors"
	"fmt"
	"strings"

	porcupine "github.com/Picovoice/porcupine/binding/go/v3"
)

// ErrNoAccessKey ключ Picovoice не задан
var ErrNoAccessKey = errors.New("PORCUPINE_KEY is not set")

// Porcupine детектор встроенного ключевого слова
type Porcupine struct {
	handle porcupine.Porcupine
}

// NewPorcupine инициализирует движок для одного встроенного слова
func NewPorcupine(accessKey, keyword string) (*Porcupine, error) {
	if accessKey == "" {
		return nil, ErrNoAccessKey
	}

	p := &Porcupine{
		handle: porcupine.Porcupine{
			AccessKey:       accessKey,
			BuiltInKeywords: []porcupine.BuiltInKeyword{porcupine.BuiltInKeyword(strings.ToLower(keyword))},
		},
	}
	if err := p.handle.Init(); err != nil {
		return nil, fmt.Errorf("init porcupine: %w", err)
	}
	return p, nil
}

// FrameLength число сэмплов в кадре движка
func (p *Porcupine) FrameLength() int {
	return porcupine.FrameLength
}

// SampleRate частота дискретизации движка
func (p *Porcupine) SampleRate() int {
	return porcupine.SampleRate
}

// Process возвращает индекс слова или -1
func (p *Porcupine) Process(pcm []int16) (int, error) {
	return p.handle.Process(pcm)
}

// Delete освобождает движок
func (p *Porcupine) Delete() error {
	return p.handle.Delete()
}
