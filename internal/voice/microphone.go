package voice

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// Microphone захват звука через arecord: S16_LE, моно
type Microphone struct {
	cmd         *exec.Cmd
	stdout      io.ReadCloser
	frameLength int
	closeOnce   sync.Once
}

// OpenMicrophone запускает arecord с частотой детектора
func OpenMicrophone(device string, sampleRate, frameLength int) (*Microphone, error) {
	path, err := exec.LookPath("arecord")
	if err != nil {
		return nil, fmt.Errorf("arecord not found: %w", err)
	}

	cmd := exec.Command(path, microphoneArgs(device, sampleRate)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("arecord stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start arecord: %w", err)
	}

	return &Microphone{cmd: cmd, stdout: stdout, frameLength: frameLength}, nil
}

func microphoneArgs(device string, sampleRate int) []string {
	args := []string{"-q", "-t", "raw", "-f", "S16_LE", "-c", "1", "-r", strconv.Itoa(sampleRate)}
	if device != "" {
		args = append(args, "-D", device)
	}
	return args
}

// FrameLength число сэмплов в блоке
func (m *Microphone) FrameLength() int {
	return m.frameLength
}

// Read заполняет buf целиком
func (m *Microphone) Read(buf []byte) error {
	_, err := io.ReadFull(m.stdout, buf)
	return err
}

// Close останавливает arecord, повторные вызовы безопасны
func (m *Microphone) Close() error {
	m.closeOnce.Do(func() {
		_ = m.stdout.Close()
		if m.cmd.Process != nil {
			_ = m.cmd.Process.Kill()
		}
		_ = m.cmd.Wait()
	})
	return nil
}
