package entity

import "time"

// Metrics показатели одного кадра.
type Metrics struct {
	DefectCount    int
	WrinklePercent float64 // доля пикселей-границ в зоне анализа, 0..100
	Timestamp      time.Time
}

// LogEntry запись журнала измерений.
type LogEntry struct {
	DefectCount    int
	WrinklePercent float64
	Timestamp      time.Time
}

// Entry превращает показатели в запись журнала.
func (m Metrics) Entry() LogEntry {
	return LogEntry(m)
}

// Second ключ дедупликации: целая часть unix-времени.
func (e LogEntry) Second() int64 {
	return e.Timestamp.Unix()
}
