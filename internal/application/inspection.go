package app

import (
	"context"
	"errors"
	"image"
	"time"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
	"wrinkle-monitor/internal/infrastructure/vision"
)

// InspectionService анализ одного кадра основной камеры.
type InspectionService struct {
	detector port.DefectDetector
}

// InspectionOutput содержит всё, что получено из кадра за тик.
type InspectionOutput struct {
	Frame     *image.RGBA     // кадр 320×240
	Gray      *image.Gray     // кадр в оттенках серого
	ROI       image.Rectangle // фактическая зона после обрезки по кадру
	Result    *entity.InspectionResult
	Defects   entity.DefectSet // дефекты в координатах кадра
	Metrics   entity.Metrics
	Annotated *image.RGBA // кадр с рамками, его же сохраняет «сохранить кадр»
	Mosaic    *image.RGBA // 2×2 для отображения
}

// NewInspectionService создаёт сервис, который прогоняет кадр через детектор.
func NewInspectionService(detector port.DefectDetector) *InspectionService {
	return &InspectionService{detector: detector}
}

// ProcessFrame нормализует кадр, вырезает зону, ищет дефекты и собирает мозаику.
func (s *InspectionService) ProcessFrame(ctx context.Context, raw image.Image, controls ControlSnapshot, now time.Time) (*InspectionOutput, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	frame := vision.NormalizeFrame(raw)
	gray := vision.ToGray(frame)
	roiGray, rect := vision.ExtractROI(gray, controls.ROI)

	result, err := s.detector.Inspect(ctx, roiGray, controls.Detection)
	if err != nil {
		return nil, err
	}

	offset := entity.ROI{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
	defects := result.Defects.Global(offset)
	annotated := vision.Annotate(frame, rect, defects)

	return &InspectionOutput{
		Frame:     frame,
		Gray:      gray,
		ROI:       rect,
		Result:    result,
		Defects:   defects,
		Metrics:   vision.ComputeMetrics(result.Mask, result.Defects, now),
		Annotated: annotated,
		Mosaic:    vision.BuildMosaic(annotated, gray, result.Gradient, result.Mask),
	}, nil
}
