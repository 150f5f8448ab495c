//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
)

// OpenCVAvailable сообщает, собран ли бинарник с OpenCV.
const OpenCVAvailable = true

// OpenCVDetector тот же конвейер, что и SobelDetector, но на OpenCV.
type OpenCVDetector struct{}

// NewOpenCVDetector создаёт детектор на gocv.
func NewOpenCVDetector() *OpenCVDetector {
	return &OpenCVDetector{}
}

// Inspect запускает анализ зоны и возвращает найденные дефекты.
func (d *OpenCVDetector) Inspect(ctx context.Context, roi *image.Gray, params entity.DetectionParameters) (*entity.InspectionResult, error) {
	_ = ctx
	if roi == nil || roi.Bounds().Empty() {
		return nil, errors.New("empty roi")
	}
	params = params.Normalize()

	src, err := gocv.ImageGrayToMatGray(roi)
	if err != nil {
		return nil, fmt.Errorf("roi to mat: %w", err)
	}
	defer src.Close()

	sobelX := gocv.NewMat()
	defer sobelX.Close()
	gocv.Sobel(src, &sobelX, gocv.MatTypeCV64F, 1, 0, params.SobelKernel, 1, 0, gocv.BorderDefault)

	sobelY := gocv.NewMat()
	defer sobelY.Close()
	gocv.Sobel(src, &sobelY, gocv.MatTypeCV64F, 0, 1, params.SobelKernel, 1, 0, gocv.BorderDefault)

	magnitude := gocv.NewMat()
	defer magnitude.Close()
	gocv.Magnitude(sobelX, sobelY, &magnitude)

	// Дробная часть отбрасывается, как в GradientMagnitude: ConvertTo округлял бы.
	gradImg, err := truncateToGray(magnitude)
	if err != nil {
		return nil, err
	}
	gradient, err := gocv.ImageGrayToMatGray(gradImg)
	if err != nil {
		return nil, fmt.Errorf("gradient to mat: %w", err)
	}
	defer gradient.Close()

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(gradient, &thresh, float32(params.EdgeThreshold), 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	defects := make(entity.DefectSet, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if !keepArea(area, params.MinArea) {
			continue
		}
		rect := gocv.BoundingRect(c)
		defects = append(defects, entity.DefectArea{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
			Area:   area,
		})
	}

	maskImg, err := matToGray(thresh)
	if err != nil {
		return nil, err
	}

	return &entity.InspectionResult{
		Gradient: gradImg,
		Mask:     maskImg,
		Defects:  defects,
	}, nil
}

// truncateToGray обрезает модуль градиента до 0..255 и отбрасывает дробную часть.
func truncateToGray(mag gocv.Mat) (*image.Gray, error) {
	data, err := mag.DataPtrFloat64()
	if err != nil {
		return nil, fmt.Errorf("magnitude data: %w", err)
	}
	rows, cols := mag.Rows(), mag.Cols()
	if len(data) < rows*cols {
		return nil, errors.New("magnitude mat is not continuous")
	}
	out := image.NewGray(image.Rect(0, 0, cols, rows))
	for i := 0; i < rows*cols; i++ {
		out.Pix[i] = clipUint8(data[i])
	}
	return out, nil
}

// matToGray превращает одноканальную gocv.Mat в image.Gray.
func matToGray(mat gocv.Mat) (*image.Gray, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, errors.New("unexpected mat type")
	}
	return gray, nil
}

// Проверка реализации интерфейса
var _ port.DefectDetector = (*OpenCVDetector)(nil)
