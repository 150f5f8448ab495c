package entity

import "image"

// InspectionResult хранит итог анализа зоны одного кадра.
type InspectionResult struct {
	Gradient *image.Gray // модуль градиента, 8 бит
	Mask     *image.Gray // бинарная маска: 255 граница, 0 фон
	Defects  DefectSet   // дефекты в координатах зоны анализа
}

// HasDefects флаг наличия дефектов.
func (r *InspectionResult) HasDefects() bool {
	return r != nil && len(r.Defects) > 0
}
