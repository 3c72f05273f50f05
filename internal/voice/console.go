package voice

import (
	"io"

	"github.com/fatih/color"
)

// Console цветной вывод агента в терминал
type Console struct {
	out     io.Writer
	info    *color.Color
	good    *color.Color
	user    *color.Color
	ai      *color.Color
	errText *color.Color
}

// NewConsole создает вывод в w
func NewConsole(w io.Writer) *Console {
	return &Console{
		out:     w,
		info:    color.New(color.FgCyan, color.Bold),
		good:    color.New(color.FgGreen),
		user:    color.New(color.FgYellow),
		ai:      color.New(color.FgMagenta),
		errText: color.New(color.FgRed),
	}
}

// Ready агент запущен
func (c *Console) Ready(wakeWord string) {
	c.info.Fprintf(c.out, "Voice agent ready, say %q to wake me up\n", wakeWord)
}

// Wake услышано ключевое слово
func (c *Console) Wake() {
	c.good.Fprintln(c.out, "Wake word detected")
}

// Listening идет запись команды
func (c *Console) Listening() {
	c.info.Fprintln(c.out, "Listening...")
}

// Heard распознанная команда
func (c *Console) Heard(text string) {
	c.user.Fprintf(c.out, "You said: %s\n", text)
}

// Reply ответ ассистента
func (c *Console) Reply(text string) {
	c.ai.Fprintf(c.out, "AI: %s\n", text)
}

// Error некритичная ошибка
func (c *Console) Error(what string, err error) {
	c.errText.Fprintf(c.out, "%s: %v\n", what, err)
}

// Exit агент остановлен
func (c *Console) Exit() {
	c.info.Fprintln(c.out, "Clean exit.")
}
