package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"smartai-dashboard/internal/metrics"
	"smartai-dashboard/internal/telemetry"
)

const (
	ReplyEmptyQuery    = "Please speak something."
	ReplyNotConfigured = "Gemini AI not configured. Add GEMINI_API_KEY in .env."
	ReplyNoResponse    = "No response from Gemini."
)

// CPUReader источник текущей загрузки CPU
type CPUReader interface {
	CPUPercent(ctx context.Context) (float64, error)
}

// Bridge отвечает на запросы: локально или через языковую модель
type Bridge struct {
	llm LanguageModel
	cpu CPUReader
	now func() time.Time
}

// NewBridge создает мост ассистента; llm == nil считается ненастроенной моделью
func NewBridge(llm LanguageModel, cpu CPUReader) *Bridge {
	return &Bridge{
		llm: llm,
		cpu: cpu,
		now: time.Now,
	}
}

// Answer всегда возвращает текст ответа, ошибки превращаются в сообщения
func (b *Bridge) Answer(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		metrics.AssistantReplies.WithLabelValues("empty").Inc()
		return ReplyEmptyQuery
	}

	lower := strings.ToLower(query)
	if strings.Contains(lower, "time") {
		metrics.AssistantReplies.WithLabelValues("local").Inc()
		return "The time is " + b.now().Format("15:04:05")
	}
	if strings.Contains(lower, "cpu") {
		metrics.AssistantReplies.WithLabelValues("local").Inc()
		return b.cpuReply(ctx)
	}

	return b.ask(ctx, query)
}

func (b *Bridge) cpuReply(ctx context.Context) string {
	if b.cpu == nil {
		return "CPU usage: N/A"
	}
	v, err := b.cpu.CPUPercent(ctx)
	if err != nil {
		log.Printf("assistant: cpu: %v", err)
		return "CPU usage: N/A"
	}
	return fmt.Sprintf("CPU usage: %s%%", telemetry.FormatPercent(v))
}

func (b *Bridge) ask(ctx context.Context, prompt string) string {
	if b.llm == nil {
		metrics.AssistantReplies.WithLabelValues("unconfigured").Inc()
		return ReplyNotConfigured
	}

	text, err := b.llm.Generate(ctx, prompt)
	switch {
	case errors.Is(err, ErrNotConfigured):
		metrics.AssistantReplies.WithLabelValues("unconfigured").Inc()
		return ReplyNotConfigured
	case err != nil:
		metrics.AssistantReplies.WithLabelValues("error").Inc()
		log.Printf("assistant: language model: %v", err)
		return fmt.Sprintf("Gemini Error: %v", err)
	case text == "":
		metrics.AssistantReplies.WithLabelValues("empty_llm").Inc()
		return ReplyNoResponse
	}

	metrics.AssistantReplies.WithLabelValues("llm").Inc()
	return text
}
