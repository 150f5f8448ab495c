package vision

import (
	"context"
	"errors"
	"image"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
)

// SobelDetector детектор складок на чистом Go: Собель, порог, внешние контуры.
type SobelDetector struct{}

// NewSobelDetector создаёт детектор.
func NewSobelDetector() *SobelDetector {
	return &SobelDetector{}
}

// Inspect запускает анализ зоны и возвращает найденные дефекты.
func (d *SobelDetector) Inspect(ctx context.Context, roi *image.Gray, params entity.DetectionParameters) (*entity.InspectionResult, error) {
	if roi == nil || roi.Bounds().Empty() {
		return nil, errors.New("empty roi")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params = params.Normalize()

	gradient := GradientMagnitude(roi, params.SobelKernel)
	mask := Binarize(gradient, params.EdgeThreshold)

	contours := FindExternalContours(mask)
	defects := make(entity.DefectSet, 0, len(contours))
	for _, c := range contours {
		area := c.Area()
		if !keepArea(area, params.MinArea) {
			continue
		}
		defects = append(defects, entity.DefectArea{
			X:      c.Bounds.Min.X,
			Y:      c.Bounds.Min.Y,
			Width:  c.Bounds.Dx(),
			Height: c.Bounds.Dy(),
			Area:   area,
		})
	}

	return &entity.InspectionResult{
		Gradient: gradient,
		Mask:     mask,
		Defects:  defects,
	}, nil
}

// keepArea фильтр по площади. minArea=0 отключает фильтр, включая одиночные пиксели.
func keepArea(area float64, minArea int) bool {
	return minArea <= 0 || area > float64(minArea)
}

// Проверка реализации интерфейса
var _ port.DefectDetector = (*SobelDetector)(nil)
