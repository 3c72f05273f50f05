package camera

import (
	"bufio"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// FFmpegSource захват V4L2 камеры через ffmpeg в rawvideo rgb24
type FFmpegSource struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	reader    *bufio.Reader
	width     int
	height    int
	raw       []byte
	closeOnce sync.Once
}

// OpenFFmpeg запускает ffmpeg для /dev/video{index}
func OpenFFmpeg(binary string, index, width, height int) (*FFmpegSource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid resolution: %dx%d", width, height)
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCamera, err)
	}

	cmd := exec.Command(resolved, buildArgs(index, width, height)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &FFmpegSource{
		cmd:    cmd,
		stdout: stdout,
		reader: bufio.NewReaderSize(stdout, width*height*3),
		width:  width,
		height: height,
		raw:    make([]byte, width*height*3),
	}, nil
}

func buildArgs(index, width, height int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "v4l2",
		"-video_size", strconv.Itoa(width) + "x" + strconv.Itoa(height),
		"-i", "/dev/video" + strconv.Itoa(index),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"pipe:1",
	}
}

// Read читает следующий кадр; каждый вызов возвращает новый *image.RGBA
func (s *FFmpegSource) Read() (draw.Image, error) {
	if _, err := io.ReadFull(s.reader, s.raw); err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i, j := 0, 0; i < len(s.raw); i, j = i+3, j+4 {
		img.Pix[j] = s.raw[i]
		img.Pix[j+1] = s.raw[i+1]
		img.Pix[j+2] = s.raw[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

// Close останавливает ffmpeg и освобождает устройство
func (s *FFmpegSource) Close() error {
	s.closeOnce.Do(func() {
		_ = s.stdout.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		// после Kill Wait возвращает "signal: killed", это штатное завершение
		_ = s.cmd.Wait()
	})
	return nil
}
