package vision

import (
	"image"
	"time"

	"wrinkle-monitor/internal/domain/entity"
)

// ComputeMetrics считает число дефектов и процент складок относительно площади зоны.
func ComputeMetrics(mask *image.Gray, defects entity.DefectSet, now time.Time) entity.Metrics {
	return entity.Metrics{
		DefectCount:    len(defects),
		WrinklePercent: WrinklePercent(mask),
		Timestamp:      now,
	}
}

// WrinklePercent доля ненулевых пикселей маски в процентах.
func WrinklePercent(mask *image.Gray) float64 {
	if mask == nil {
		return 0
	}
	b := mask.Bounds()
	total := b.Dx() * b.Dy()
	if total <= 0 {
		return 0
	}
	return 100 * float64(countNonZero(mask)) / float64(total)
}

func countNonZero(mask *image.Gray) int {
	b := mask.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := mask.PixOffset(b.Min.X, y)
		for _, v := range mask.Pix[off : off+b.Dx()] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
