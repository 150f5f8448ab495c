package entity

// RingBuffer ограниченный FIFO-буфер последних записей для живого графика.
type RingBuffer struct {
	items []LogEntry
	start int
	size  int
}

// NewRingBuffer создаёт буфер заданной ёмкости.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{items: make([]LogEntry, capacity)}
}

// Push добавляет запись, вытесняя самую старую при переполнении.
func (b *RingBuffer) Push(e LogEntry) {
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = e
		b.size++
		return
	}
	b.items[b.start] = e
	b.start = (b.start + 1) % len(b.items)
}

// Len количество записей.
func (b *RingBuffer) Len() int { return b.size }

// Cap ёмкость буфера.
func (b *RingBuffer) Cap() int { return len(b.items) }

// Snapshot копия записей от старой к новой.
func (b *RingBuffer) Snapshot() []LogEntry {
	out := make([]LogEntry, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.items[(b.start+i)%len(b.items)]
	}
	return out
}

// Reset очищает буфер.
func (b *RingBuffer) Reset() {
	b.start, b.size = 0, 0
}
