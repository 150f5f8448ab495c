package camera

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLatestFrameEmpty(t *testing.T) {
	_, ok := NewLatestFrame(time.Second).Read()
	require.False(t, ok)
}

func TestLatestFrameCopies(t *testing.T) {
	slot := NewLatestFrame(time.Second)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(1, 1, color.RGBA{G: 9, A: 255})
	slot.Put(src)
	src.SetRGBA(1, 1, color.RGBA{})

	a, ok := slot.Read()
	require.True(t, ok)
	require.Equal(t, uint8(9), a.RGBAAt(1, 1).G)

	a.SetRGBA(1, 1, color.RGBA{})
	b, ok := slot.Read()
	require.True(t, ok)
	require.Equal(t, uint8(9), b.RGBAAt(1, 1).G, "читатели получают независимые копии")
}

func TestLatestFrameStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	slot := NewLatestFrame(2 * time.Second)
	slot.now = func() time.Time { return now }
	slot.Put(image.NewRGBA(image.Rect(0, 0, 2, 2)))

	now = now.Add(time.Second)
	_, ok := slot.Read()
	require.True(t, ok)

	now = now.Add(5 * time.Second)
	_, ok = slot.Read()
	require.False(t, ok, "зависшая камера превращает тик в холостой")
}
