package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wrinkle-monitor/internal/domain/port"
)

// ErrQueueFull очередь записи переполнена, снимок не сохранён.
var ErrQueueFull = errors.New("image write queue is full")

type writeJob struct {
	path string
	img  image.Image
	done func(error)
}

// ImageWriter пул горутин, сохраняющих снимки на диск. Submit не ждёт записи.
type ImageWriter struct {
	jobs   chan writeJob
	group  *errgroup.Group
	logger *zap.Logger
}

// NewImageWriter запускает workers горутин с очередью заданной длины.
func NewImageWriter(workers, queue int, logger *zap.Logger) *ImageWriter {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &ImageWriter{
		jobs:   make(chan writeJob, queue),
		group:  &errgroup.Group{},
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		w.group.Go(w.work)
	}
	return w
}

// Submit ставит снимок в очередь. Изображение после передачи не должно меняться.
func (w *ImageWriter) Submit(path string, img image.Image, done func(error)) error {
	select {
	case w.jobs <- writeJob{path: path, img: img, done: done}:
		return nil
	default:
		w.logger.Warn("image queue is full", zap.String("path", path))
		return ErrQueueFull
	}
}

// Close дожидается записи уже принятых снимков.
func (w *ImageWriter) Close(ctx context.Context) error {
	close(w.jobs)
	finished := make(chan error, 1)
	go func() { finished <- w.group.Wait() }()
	select {
	case err := <-finished:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *ImageWriter) work() error {
	for job := range w.jobs {
		err := w.write(job.path, job.img)
		if err != nil {
			w.logger.Warn("image save failed", zap.String("path", job.path), zap.Error(err))
		} else {
			w.logger.Debug("image saved", zap.String("path", job.path))
		}
		if job.done != nil {
			job.done(err)
		}
	}
	return nil
}

func (w *ImageWriter) write(path string, img image.Image) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("save %s: panic: %v", path, r)
		}
	}()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.ImageStore = (*ImageWriter)(nil)
