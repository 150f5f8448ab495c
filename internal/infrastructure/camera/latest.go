package camera

import (
	"image"
	"sync"
	"time"

	"golang.org/x/image/draw"
)

// LatestFrame хранит последний кадр камеры. Читатель никогда не ждёт:
// если кадра нет или он устарел, Read сообщает об этом сразу.
type LatestFrame struct {
	mu     sync.Mutex
	frame  *image.RGBA
	at     time.Time
	maxAge time.Duration
	now    func() time.Time
}

// NewLatestFrame создаёт слот; кадры старше maxAge считаются отсутствующими.
func NewLatestFrame(maxAge time.Duration) *LatestFrame {
	return &LatestFrame{maxAge: maxAge, now: time.Now}
}

// Put сохраняет копию кадра.
func (l *LatestFrame) Put(img image.Image) {
	b := img.Bounds()
	cp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(cp, cp.Bounds(), img, b.Min, draw.Src)

	l.mu.Lock()
	l.frame = cp
	l.at = l.now()
	l.mu.Unlock()
}

// Read возвращает собственную копию последнего кадра.
func (l *LatestFrame) Read() (*image.RGBA, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frame == nil {
		return nil, false
	}
	if l.maxAge > 0 && l.now().Sub(l.at) > l.maxAge {
		return nil, false
	}
	cp := image.NewRGBA(l.frame.Rect)
	copy(cp.Pix, l.frame.Pix)
	return cp, true
}
