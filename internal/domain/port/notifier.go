package port

import (
	"context"
	"image"

	"wrinkle-monitor/internal/domain/entity"
)

// StatusNotifier получатель статусных сообщений
type StatusNotifier interface {
	// Notify отправляет короткое сообщение о событии
	Notify(ctx context.Context, text string) error

	// NotifyPhoto отправляет сохранённый снимок с подписью
	NotifyPhoto(ctx context.Context, path, caption string) error
}

// Display получатель мозаики и кадра второй камеры
type Display interface {
	Show(mosaic *image.RGBA, secondary *image.RGBA)
}

// MetricsRecorder учёт показателей конвейера
type MetricsRecorder interface {
	Observe(m entity.Metrics)
	TickSkipped()
	CaptureFired()
	PersistFailed(kind string)
	SetRecording(active bool)
}
