package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"wrinkle-monitor/internal/domain/port"
)

// StatusEvent короткое сообщение для интерфейса, опционально со снимком.
type StatusEvent struct {
	Text      string
	PhotoPath string
}

// StatusBus хранит последнее сообщение и асинхронно раздаёт события получателям.
// Publish никогда не блокирует вызывающего.
type StatusBus struct {
	mu        sync.RWMutex
	last      string
	events    chan StatusEvent
	notifiers []port.StatusNotifier
	logger    *zap.Logger
}

// NewStatusBus создаёт шину с буфером заданного размера.
func NewStatusBus(buffer int, logger *zap.Logger, notifiers ...port.StatusNotifier) *StatusBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusBus{
		last:      "準備就緒",
		events:    make(chan StatusEvent, buffer),
		notifiers: notifiers,
		logger:    logger,
	}
}

// AddNotifier подключает получателя. Вызывать до Run.
func (b *StatusBus) AddNotifier(n port.StatusNotifier) {
	b.mu.Lock()
	b.notifiers = append(b.notifiers, n)
	b.mu.Unlock()
}

// Publish запоминает текст и ставит событие в очередь; при переполнении событие теряется.
func (b *StatusBus) Publish(ev StatusEvent) {
	b.mu.Lock()
	b.last = ev.Text
	b.mu.Unlock()

	b.logger.Info("status", zap.String("text", ev.Text), zap.String("photo", ev.PhotoPath))
	select {
	case b.events <- ev:
	default:
		b.logger.Warn("status queue is full, event dropped", zap.String("text", ev.Text))
	}
}

// Last последнее сообщение.
func (b *StatusBus) Last() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Run раздаёт события получателям до отмены контекста.
func (b *StatusBus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.events:
			b.dispatch(ctx, ev)
		}
	}
}

func (b *StatusBus) dispatch(ctx context.Context, ev StatusEvent) {
	b.mu.RLock()
	notifiers := b.notifiers
	b.mu.RUnlock()

	for _, n := range notifiers {
		var err error
		if ev.PhotoPath != "" {
			err = n.NotifyPhoto(ctx, ev.PhotoPath, ev.Text)
		} else {
			err = n.Notify(ctx, ev.Text)
		}
		if err != nil {
			b.logger.Warn("notify failed", zap.Error(err))
		}
	}
}
