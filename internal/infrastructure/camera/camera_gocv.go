//go:build gocv
// +build gocv

package camera

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"wrinkle-monitor/internal/domain/port"
)

// Camera читает кадры OpenCV VideoCapture в фоновой горутине.
type Camera struct {
	index  int
	cap    *gocv.VideoCapture
	slot   *LatestFrame
	stop   chan struct{}
	done   chan error // цикл чтения сам закрывает VideoCapture и пишет сюда результат
	once   sync.Once
	closed error
	logger *zap.Logger
}

// Open открывает камеру по индексу и запускает чтение.
func Open(index int, maxAge time.Duration, logger *zap.Logger) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", index, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d is not available", index)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Camera{
		index:  index,
		cap:    capture,
		slot:   NewLatestFrame(maxAge),
		stop:   make(chan struct{}),
		done:   make(chan error, 1),
		logger: logger.With(zap.Int("camera", index)),
	}
	go c.loop()
	c.logger.Info("camera opened")
	return c, nil
}

func (c *Camera) loop() {
	mat := gocv.NewMat()
	defer func() {
		mat.Close()
		c.done <- c.cap.Close()
	}()

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		if ok := c.cap.Read(&mat); !ok || mat.Empty() {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		img, err := mat.ToImage()
		if err != nil {
			c.logger.Debug("frame convert failed", zap.Error(err))
			continue
		}
		c.slot.Put(img)
	}
}

// Read возвращает последний кадр без ожидания
func (c *Camera) Read() (*image.RGBA, bool) {
	return c.slot.Read()
}

// Close останавливает чтение. Если драйвер завис в Read, Close не ждёт дольше
// closeTimeout: камера освободится, когда Read вернётся.
func (c *Camera) Close() error {
	c.once.Do(func() {
		close(c.stop)
		c.closed = waitStopped(c.done, closeTimeout)
		if errors.Is(c.closed, ErrCloseTimeout) {
			c.logger.Warn("camera read is stuck, releasing in background")
			return
		}
		c.logger.Info("camera closed")
	})
	return c.closed
}

// Factory возвращает фабрику камер для конвейера.
func Factory(maxAge time.Duration, logger *zap.Logger) port.FrameSourceFactory {
	return func(index int) (port.FrameSource, error) {
		c, err := Open(index, maxAge, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Probe возвращает индексы камер, которые отдают кадр.
func Probe(maxIndex int) ([]int, error) {
	if maxIndex < 1 {
		return nil, errors.New("max index must be positive")
	}
	var found []int
	mat := gocv.NewMat()
	defer mat.Close()
	for i := 0; i < maxIndex; i++ {
		capture, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if capture.Read(&mat) && !mat.Empty() {
			found = append(found, i)
		}
		capture.Close()
	}
	return found, nil
}

var _ port.FrameSource = (*Camera)(nil)
