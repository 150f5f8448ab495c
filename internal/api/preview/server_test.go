package preview

import (
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerFrame(t *testing.T) {
	d := NewDisplay()
	srv := NewServer(":0", d, nil, func() string { return "準備就緒" }, nil)
	h := srv.Handler()

	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/frame.png").Code)

	mosaic := image.NewRGBA(image.Rect(0, 0, 640, 480))
	mosaic.SetRGBA(3, 4, color.RGBA{R: 255, A: 255})
	d.Show(mosaic, nil)

	rec := get(t, h, "/frame.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := imaging.Decode(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 640, img.Bounds().Dx())
	r, _, _, _ := img.At(3, 4).RGBA()
	require.Equal(t, uint32(0xffff), r)

	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/secondary.png").Code)
}

func TestServerKeepsLastSecondary(t *testing.T) {
	d := NewDisplay()
	sec := image.NewRGBA(image.Rect(0, 0, 320, 240))
	d.Show(image.NewRGBA(image.Rect(0, 0, 640, 480)), sec)
	d.Show(image.NewRGBA(image.Rect(0, 0, 640, 480)), nil)

	_, got := d.latest()
	require.Same(t, sec, got)
}

func TestServerStatusAndHealth(t *testing.T) {
	h := NewServer(":0", NewDisplay(), nil, func() string { return "🛑 停止記錄" }, nil).Handler()

	rec := get(t, h, "/health")
	require.Equal(t, "ok", rec.Body.String())

	rec = get(t, h, "/status")
	require.Equal(t, "🛑 停止記錄", rec.Body.String())

	require.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code)
}
