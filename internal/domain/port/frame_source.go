package port

import "image"

// FrameSource источник кадров камеры
type FrameSource interface {
	// Read возвращает последний кадр без ожидания; ok=false если кадра нет
	Read() (frame *image.RGBA, ok bool)

	// Close освобождает камеру
	Close() error
}

// FrameSourceFactory открывает камеру по индексу
type FrameSourceFactory func(index int) (FrameSource, error)
