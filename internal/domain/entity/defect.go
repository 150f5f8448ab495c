package entity

import "image"

// DefectArea представляет область с обнаруженной складкой
type DefectArea struct {
	X      int     // координата X левого верхнего угла
	Y      int     // координата Y левого верхнего угла
	Width  int     // ширина области в пикселях
	Height int     // высота области в пикселях
	Area   float64 // площадь контура (по формуле многоугольника)
}

// Center возвращает координаты центра дефекта
func (d DefectArea) Center() (x, y int) {
	return d.X + d.Width/2, d.Y + d.Height/2
}

// Rect возвращает габаритный прямоугольник дефекта
func (d DefectArea) Rect() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
}

// Offset переводит координаты из системы зоны анализа в систему кадра
func (d DefectArea) Offset(dx, dy int) DefectArea {
	d.X += dx
	d.Y += dy
	return d
}

// DefectSet упорядоченный набор дефектов одного кадра.
type DefectSet []DefectArea

// Global возвращает копию набора в координатах кадра.
func (s DefectSet) Global(roi ROI) DefectSet {
	out := make(DefectSet, len(s))
	for i, d := range s {
		out[i] = d.Offset(roi.X, roi.Y)
	}
	return out
}
