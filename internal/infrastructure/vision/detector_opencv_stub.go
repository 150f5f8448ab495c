//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
)

// OpenCVAvailable сообщает, собран ли бинарник с OpenCV.
const OpenCVAvailable = false

// OpenCVDetector детектор-заглушка (без OpenCV).
type OpenCVDetector struct{}

// NewOpenCVDetector создаёт детектор-заглушку.
func NewOpenCVDetector() *OpenCVDetector {
	return &OpenCVDetector{}
}

// Inspect возвращает ошибку, если сборка без тега gocv.
func (d *OpenCVDetector) Inspect(ctx context.Context, roi *image.Gray, params entity.DetectionParameters) (*entity.InspectionResult, error) {
	_ = ctx
	_ = roi
	_ = params
	return nil, errors.New("gocv build tag is not enabled")
}

var _ port.DefectDetector = (*OpenCVDetector)(nil)
