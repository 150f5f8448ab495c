package app

import (
	"time"

	"github.com/google/uuid"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
)

// ChartCapacity сколько последних записей видит живой график.
const ChartCapacity = 30

// RecordingSession существует между командами «начать запись» и «остановить запись».
type RecordingSession struct {
	ID         string
	StartedAt  time.Time
	CaptureDir string
	Trigger    entity.TriggerState

	log        port.RecordLog
	chart      *entity.RingBuffer
	lastSecond int64
	hasLast    bool
	appended   int
}

// NewRecordingSession создаёт сеанс поверх уже открытого журнала.
func NewRecordingSession(log port.RecordLog, captureDir string, now time.Time) *RecordingSession {
	return &RecordingSession{
		ID:         uuid.NewString(),
		StartedAt:  now,
		CaptureDir: captureDir,
		log:        log,
		chart:      entity.NewRingBuffer(ChartCapacity),
	}
}

// Record принимает показатели тика. В журнал попадает не больше одной записи
// на целую секунду. Возвращает true, если запись принята.
func (s *RecordingSession) Record(m entity.Metrics) (bool, error) {
	entry := m.Entry()
	sec := entry.Second()
	if s.hasLast && sec == s.lastSecond {
		return false, nil
	}
	s.lastSecond, s.hasLast = sec, true

	s.chart.Push(entry)
	if s.log == nil {
		return true, nil
	}
	if err := s.log.Append(entry); err != nil {
		return true, err
	}
	s.appended++
	return true, nil
}

// Chart копия буфера для графика, от старых к новым.
func (s *RecordingSession) Chart() []entity.LogEntry {
	return s.chart.Snapshot()
}

// Appended сколько строк записано в журнал.
func (s *RecordingSession) Appended() int {
	return s.appended
}

// LogPath путь к журналу сеанса.
func (s *RecordingSession) LogPath() string {
	if s.log == nil {
		return ""
	}
	return s.log.Path()
}

// Close закрывает журнал.
func (s *RecordingSession) Close() error {
	if s.log == nil {
		return nil
	}
	return s.log.Close()
}
