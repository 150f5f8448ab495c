package port

import (
	"context"
	"image"

	"wrinkle-monitor/internal/domain/entity"
)

// DefectDetector интерфейс детектора складок
type DefectDetector interface {
	// Inspect строит карту градиента, маску и список дефектов для серой зоны анализа
	Inspect(ctx context.Context, roi *image.Gray, params entity.DetectionParameters) (*entity.InspectionResult, error)
}
