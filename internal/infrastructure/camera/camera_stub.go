//go:build !gocv
// +build !gocv

package camera

import (
	"errors"
	"image"
	"time"

	"go.uber.org/zap"

	"wrinkle-monitor/internal/domain/port"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// Camera заглушка камеры (без OpenCV).
type Camera struct{}

// Open возвращает ошибку, если сборка без тега gocv.
func Open(index int, maxAge time.Duration, logger *zap.Logger) (*Camera, error) {
	_ = index
	_ = maxAge
	_ = logger
	return nil, errNoGoCV
}

// Read всегда сообщает об отсутствии кадра.
func (c *Camera) Read() (*image.RGBA, bool) {
	return nil, false
}

// Close ничего не делает.
func (c *Camera) Close() error {
	return nil
}

// Factory возвращает фабрику, которая всегда отвечает ошибкой.
func Factory(maxAge time.Duration, logger *zap.Logger) port.FrameSourceFactory {
	return func(index int) (port.FrameSource, error) {
		return nil, errNoGoCV
	}
}

// Probe возвращает ошибку, если сборка без тега gocv.
func Probe(maxIndex int) ([]int, error) {
	_ = maxIndex
	return nil, errNoGoCV
}

var _ port.FrameSource = (*Camera)(nil)
