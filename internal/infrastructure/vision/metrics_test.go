package vision

import (
	"image"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wrinkle-monitor/internal/domain/entity"
)

func TestComputeMetrics(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := 0; i < 25; i++ {
		mask.Pix[i] = 255
	}
	now := time.Now()
	m := ComputeMetrics(mask, entity.DefectSet{{}, {}}, now)

	require.Equal(t, 2, m.DefectCount)
	require.InDelta(t, 25.0, m.WrinklePercent, 1e-9)
	require.Equal(t, now, m.Timestamp)
}

func TestWrinklePercentRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		w, h := 10+rng.Intn(100), 10+rng.Intn(100)
		mask := image.NewGray(image.Rect(0, 0, w, h))
		on := 0
		for i := range mask.Pix {
			if rng.Intn(3) == 0 {
				mask.Pix[i] = 255
				on++
			}
		}
		p := WrinklePercent(mask)
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 100.0)
		require.InDelta(t, 100*float64(on)/float64(w*h), p, 1e-9)
	}
	require.Zero(t, WrinklePercent(image.NewGray(image.Rectangle{})))
}
