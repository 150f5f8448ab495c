package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefectAreaCenter(t *testing.T) {
	d := DefectArea{X: 10, Y: 20, Width: 8, Height: 6}
	x, y := d.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
}

func TestDefectSetGlobal(t *testing.T) {
	local := DefectSet{{X: 1, Y: 2, Width: 3, Height: 4}}
	global := local.Global(ROI{X: 80, Y: 60, Width: 160, Height: 120})

	require.Equal(t, image.Rect(81, 62, 84, 66), global[0].Rect())
	require.Equal(t, 1, local[0].X, "исходный набор не меняется")
}
