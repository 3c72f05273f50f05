package voice

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"strings"
)

const (
	replyListening = "Yes, I am listening."
	replyMissed    = "Sorry, I did not catch that."
	replyStopping  = "Okay, stopping voice assistant."
	replyEmpty     = "Sorry, I have no response."
)

var stopPhrases = []string{"band", "stop listening", "shut down"}

// AudioSource микрофон, отдающий блоки PCM S16LE
type AudioSource interface {
	FrameLength() int
	Read(buf []byte) error
	Close() error
}

// WakeWordDetector детектор ключевого слова
type WakeWordDetector interface {
	FrameLength() int
	SampleRate() int
	Process(pcm []int16) (int, error)
	Delete() error
}

// Recognizer распознавание одной фразы после ключевого слова
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker синтез речи
type Speaker interface {
	Speak(text string) error
	Close() error
}

// Backend ассистент дашборда
type Backend interface {
	Ask(ctx context.Context, text string) string
}

// Agent цикл голосового ассистента
type Agent struct {
	audio      AudioSource
	detector   WakeWordDetector
	recognizer Recognizer
	speaker    Speaker
	backend    Backend
	console    *Console
}

// NewAgent собирает агента из компонентов
func NewAgent(audio AudioSource, detector WakeWordDetector, recognizer Recognizer, speaker Speaker, backend Backend, console *Console) *Agent {
	return &Agent{
		audio:      audio,
		detector:   detector,
		recognizer: recognizer,
		speaker:    speaker,
		backend:    backend,
		console:    console,
	}
}

// Run читает микрофон до стоп-фразы, отмены контекста или ошибки чтения
func (a *Agent) Run(ctx context.Context) error {
	frameLength := a.detector.FrameLength()
	if a.audio.FrameLength() != frameLength {
		return fmt.Errorf("audio frame length %d does not match detector frame length %d",
			a.audio.FrameLength(), frameLength)
	}

	// Read блокируется, закрытие источника его прерывает
	stop := context.AfterFunc(ctx, func() {
		if err := a.audio.Close(); err != nil {
			log.Printf("voice: close audio: %v", err)
		}
	})
	defer stop()

	buf := make([]byte, frameLength*2)
	pcm := make([]int16, frameLength)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := a.audio.Read(buf); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read audio: %w", err)
		}
		for i := range pcm {
			pcm[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
		}

		index, err := a.detector.Process(pcm)
		if err != nil {
			return fmt.Errorf("process audio: %w", err)
		}
		if index < 0 {
			continue
		}

		a.console.Wake()
		if a.handleWake(ctx) {
			return nil
		}
	}
}

// handleWake возвращает true, если услышана стоп-фраза
func (a *Agent) handleWake(ctx context.Context) bool {
	a.Speak(replyListening)
	a.console.Listening()

	command, err := a.recognizer.Listen(ctx)
	if err != nil {
		a.console.Error("Speech recognition error", err)
		command = ""
	}
	command = strings.TrimSpace(command)
	if command == "" {
		a.Speak(replyMissed)
		return false
	}
	a.console.Heard(command)

	if IsStopPhrase(command) {
		a.Speak(replyStopping)
		return true
	}

	a.Speak(a.backend.Ask(ctx, command))
	return false
}

// Speak печатает и проговаривает ответ, ошибка синтеза только логируется
func (a *Agent) Speak(text string) {
	if text == "" {
		text = replyEmpty
	}
	a.console.Reply(text)
	if err := a.speaker.Speak(text); err != nil {
		a.console.Error("TTS error", err)
	}
}

// Close освобождает микрофон, синтезатор и детектор независимо друг от друга
func (a *Agent) Close() error {
	var errs []error
	if err := a.audio.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close audio: %w", err))
	}
	if err := a.speaker.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close speaker: %w", err))
	}
	if err := a.detector.Delete(); err != nil {
		errs = append(errs, fmt.Errorf("delete wake word detector: %w", err))
	}
	return errors.Join(errs...)
}

// IsStopPhrase проверяет локальную команду остановки
func IsStopPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range stopPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
