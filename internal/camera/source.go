package camera

import (
	"errors"
	"image/draw"
)

// ErrNoCamera камера отключена или недоступна
var ErrNoCamera = errors.New("camera not available")

// Source источник кадров; кадр принадлежит вызывающему до следующего Read
type Source interface {
	Read() (draw.Image, error)
	Close() error
}

// Opener открывает камеру на время одного потока
type Opener func() (Source, error)
