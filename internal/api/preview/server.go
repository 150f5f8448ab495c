// Package preview HTTP-доступ к последней мозаике, статусу и метрикам.
package preview

import (
	"context"
	"errors"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"wrinkle-monitor/internal/domain/port"
)

const readHeaderTimeout = 10 * time.Second

// Display хранит последние кадры для выдачи по HTTP.
type Display struct {
	mu        sync.RWMutex
	mosaic    *image.RGBA
	secondary *image.RGBA
}

func NewDisplay() *Display {
	return &Display{}
}

// Show вызывается конвейером на каждом тике. Конвейер не переиспользует буферы.
func (d *Display) Show(mosaic, secondary *image.RGBA) {
	d.mu.Lock()
	d.mosaic = mosaic
	if secondary != nil {
		d.secondary = secondary
	}
	d.mu.Unlock()
}

func (d *Display) latest() (*image.RGBA, *image.RGBA) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mosaic, d.secondary
}

var _ port.Display = (*Display)(nil)

// Server отдаёт /frame.png, /secondary.png, /status, /health и /metrics.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer собирает маршруты. metrics и status могут быть nil.
func NewServer(addr string, display *Display, metrics http.Handler, status func() string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, _ *http.Request) {
		mosaic, _ := display.latest()
		writePNG(w, mosaic, logger)
	})
	mux.HandleFunc("/secondary.png", func(w http.ResponseWriter, _ *http.Request) {
		_, secondary := display.latest()
		writePNG(w, secondary, logger)
	})
	if status != nil {
		mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(status()))
		})
	}
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger,
	}
}

// Handler для тестов.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run слушает адрес до отмены контекста.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.server.Addr))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func writePNG(w http.ResponseWriter, img *image.RGBA, logger *zap.Logger) {
	if img == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		logger.Debug("encode preview", zap.Error(err))
	}
}
