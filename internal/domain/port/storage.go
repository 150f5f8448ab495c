package port

import (
	"image"

	"wrinkle-monitor/internal/domain/entity"
)

// ImageStore асинхронная запись изображений
type ImageStore interface {
	// Submit ставит запись в очередь и сразу возвращается; done вызывается из рабочей горутины
	Submit(path string, img image.Image, done func(error)) error
}

// RecordLog журнал измерений сеанса записи
type RecordLog interface {
	// Append дописывает строку журнала
	Append(entry entity.LogEntry) error

	// Path путь к файлу журнала
	Path() string

	// Close закрывает файл
	Close() error
}

// RecordLogOpener создаёт журнал и пишет заголовок
type RecordLogOpener func(path string) (RecordLog, error)
