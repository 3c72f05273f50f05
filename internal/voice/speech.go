package voice

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// SystemSpeaker синтез речи через espeak-ng
type SystemSpeaker struct {
	command string
	rate    int
}

// NewSystemSpeaker ищет бинарь синтезатора
func NewSystemSpeaker(command string, rate int) (*SystemSpeaker, error) {
	if command == "" {
		command = "espeak-ng"
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return nil, err
	}
	return &SystemSpeaker{command: resolved, rate: rate}, nil
}

// Speak проговаривает текст и ждет завершения
func (s *SystemSpeaker) Speak(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	args := []string{}
	if s.rate > 0 {
		args = append(args, "-s", strconv.Itoa(s.rate))
	}
	args = append(args, trimmed)
	cmd := exec.Command(s.command, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

// Close ничего не держит между фразами
func (s *SystemSpeaker) Close() error {
	return nil
}

// CommandRecognizer внешняя программа распознавания, печатающая текст в stdout
type CommandRecognizer struct {
	args     []string
	language string
}

// NewCommandRecognizer разбирает командную строку распознавателя
func NewCommandRecognizer(command, language string) (*CommandRecognizer, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, fmt.Errorf("speech recognizer command is empty")
	}
	resolved, err := exec.LookPath(args[0])
	if err != nil {
		return nil, err
	}
	args[0] = resolved
	return &CommandRecognizer{args: args, language: language}, nil
}

// Listen запускает распознаватель на одну фразу, язык передается в STT_LANGUAGE
func (r *CommandRecognizer) Listen(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, r.args[0], r.args[1:]...)
	cmd.Env = append(os.Environ(), "STT_LANGUAGE="+r.language)
	cmd.Stderr = io.Discard

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("speech recognizer: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
