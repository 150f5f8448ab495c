package vision

import (
	"image"

	"golang.org/x/image/draw"

	"wrinkle-monitor/internal/domain/entity"
)

// NormalizeFrame приводит кадр камеры к 320×240. Всегда возвращает новый буфер.
func NormalizeFrame(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, entity.FrameWidth, entity.FrameHeight))
	b := src.Bounds()
	if b.Dx() == entity.FrameWidth && b.Dy() == entity.FrameHeight {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// ToGray переводит кадр в оттенки серого.
func ToGray(src image.Image) *image.Gray {
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	return gray
}

// ClampRect ограничивает зону анализа границами кадра. Пустой прямоугольник
// возвращается, только если кадр пуст.
func ClampRect(bounds image.Rectangle, roi entity.ROI) image.Rectangle {
	r := roi.Rect().Intersect(bounds)
	if r.Empty() && !bounds.Empty() {
		// зона целиком вне кадра: прижимаем к ближайшему углу
		r = roi.Clamp().Rect().Intersect(bounds)
	}
	return r
}

// ExtractROI копирует зону анализа в новое изображение с началом в (0,0).
// Зона предварительно обрезается по границам кадра, чтение за пределами невозможно.
func ExtractROI(frame *image.Gray, roi entity.ROI) (*image.Gray, image.Rectangle) {
	rect := ClampRect(frame.Bounds(), roi)
	out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		src := frame.PixOffset(rect.Min.X, rect.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+rect.Dx()], frame.Pix[src:src+rect.Dx()])
	}
	return out, rect
}
