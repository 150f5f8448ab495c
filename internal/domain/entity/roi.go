package entity

import "image"

const (
	FrameWidth  = 320 // ширина нормализованного кадра
	FrameHeight = 240 // высота нормализованного кадра
	MinROISide  = 10  // минимальная сторона зоны анализа
)

// ROI зона анализа внутри нормализованного кадра 320×240.
type ROI struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DefaultROI возвращает зону по центру кадра.
func DefaultROI() ROI {
	return ROI{X: 80, Y: 60, Width: 160, Height: 120}
}

// Clamp приводит зону к допустимым границам кадра.
func (r ROI) Clamp() ROI {
	r.Width = clampInt(r.Width, MinROISide, FrameWidth)
	r.Height = clampInt(r.Height, MinROISide, FrameHeight)
	r.X = clampInt(r.X, 0, FrameWidth-r.Width)
	r.Y = clampInt(r.Y, 0, FrameHeight-r.Height)
	return r
}

// Move сдвигает зону на (dx, dy) не выходя за кадр.
func (r ROI) Move(dx, dy int) ROI {
	r.X += dx
	r.Y += dy
	return r.Clamp()
}

// Resize меняет размер зоны, сохраняя левый верхний угол где это возможно.
func (r ROI) Resize(width, height int) ROI {
	r.Width = width
	r.Height = height
	return r.Clamp()
}

// Contains проверяет, попадает ли точка в зону (для начала перетаскивания).
func (r ROI) Contains(x, y int) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Rect возвращает зону как image.Rectangle.
func (r ROI) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Valid сообщает, удовлетворяет ли зона инвариантам без клампинга.
func (r ROI) Valid() bool {
	return r == r.Clamp()
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
