package camera

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	args := strings.Join(buildArgs(2, 640, 480), " ")

	for _, want := range []string{"-i /dev/video2", "-video_size 640x480", "-pix_fmt rgb24", "pipe:1"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestOpenFFmpegMissingBinary(t *testing.T) {
	_, err := OpenFFmpeg("definitely-not-ffmpeg-binary", 0, 640, 480)
	if !errors.Is(err, ErrNoCamera) {
		t.Errorf("OpenFFmpeg() error = %v, want %v", err, ErrNoCamera)
	}
}
