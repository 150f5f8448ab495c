package vision

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"wrinkle-monitor/internal/domain/entity"
)

var (
	defectColor = color.RGBA{R: 255, A: 255}        // дефекты красным
	roiColor    = color.RGBA{R: 255, G: 255, A: 255} // зона анализа жёлтым
)

const strokeWidth = 2

// Annotate рисует рамки дефектов (в координатах кадра) и рамку зоны анализа на копии кадра.
func Annotate(frame *image.RGBA, roi image.Rectangle, defects entity.DefectSet) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	draw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, draw.Src)
	for _, d := range defects {
		strokeRect(out, d.Rect(), defectColor)
	}
	strokeRect(out, roi, roiColor)
	return out
}

// BuildMosaic собирает 2×2: размеченный кадр, градиент / серый кадр, маска.
// Каждая ячейка масштабируется к 320×240.
func BuildMosaic(annotated *image.RGBA, gray, gradient, mask *image.Gray) *image.RGBA {
	cell := image.Rect(0, 0, entity.FrameWidth, entity.FrameHeight)
	dst := image.NewRGBA(image.Rect(0, 0, 2*cell.Dx(), 2*cell.Dy()))

	cells := []struct {
		src image.Image
		at  image.Point
	}{
		{annotated, image.Pt(0, 0)},
		{gradient, image.Pt(cell.Dx(), 0)},
		{gray, image.Pt(0, cell.Dy())},
		{mask, image.Pt(cell.Dx(), cell.Dy())},
	}
	for _, c := range cells {
		r := cell.Add(c.at)
		if c.src.Bounds().Size() == cell.Size() {
			draw.Draw(dst, r, c.src, c.src.Bounds().Min, draw.Src)
			continue
		}
		draw.ApproxBiLinear.Scale(dst, r, c.src, c.src.Bounds(), draw.Src, nil)
	}
	return dst
}

// strokeRect рисует контур прямоугольника толщиной strokeWidth по его углам.
func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	lo := -(strokeWidth / 2)
	hi := strokeWidth - 1 + lo
	for o := lo; o <= hi; o++ {
		for x := r.Min.X + lo; x <= r.Max.X+hi; x++ {
			img.SetRGBA(x, r.Min.Y+o, c)
			img.SetRGBA(x, r.Max.Y+o, c)
		}
		for y := r.Min.Y + lo; y <= r.Max.Y+hi; y++ {
			img.SetRGBA(r.Min.X+o, y, c)
			img.SetRGBA(r.Max.X+o, y, c)
		}
	}
}
