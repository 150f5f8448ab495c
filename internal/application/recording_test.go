package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"wrinkle-monitor/internal/domain/entity"
)

type memoryLog struct {
	path    string
	entries []entity.LogEntry
	fail    error
	closed  bool
}

func (l *memoryLog) Append(e entity.LogEntry) error {
	if l.fail != nil {
		return l.fail
	}
	l.entries = append(l.entries, e)
	return nil
}

func (l *memoryLog) Path() string { return l.path }

func (l *memoryLog) Close() error {
	l.closed = true
	return nil
}

func TestRecordingSessionDedupPerSecond(t *testing.T) {
	log := &memoryLog{}
	s := NewRecordingSession(log, "captures", at(0))

	ok, err := s.Record(entity.Metrics{DefectCount: 3, Timestamp: at(1.2)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Record(entity.Metrics{DefectCount: 4, Timestamp: at(1.8)})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Record(entity.Metrics{DefectCount: 5, Timestamp: at(2.01)})
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, log.entries, 2)
	require.Equal(t, 3, log.entries[0].DefectCount)
	require.Equal(t, 5, log.entries[1].DefectCount)
	require.Len(t, s.Chart(), 2)
	require.Equal(t, 2, s.Appended())
}

func TestRecordingSessionChartCapacity(t *testing.T) {
	s := NewRecordingSession(&memoryLog{}, "", at(0))
	for i := 0; i < 35; i++ {
		_, err := s.Record(entity.Metrics{DefectCount: i, Timestamp: at(float64(i))})
		require.NoError(t, err)
	}
	chart := s.Chart()
	require.Len(t, chart, ChartCapacity)
	require.Equal(t, 5, chart[0].DefectCount)
	require.Equal(t, 34, chart[len(chart)-1].DefectCount)
}

func TestRecordingSessionAppendFailure(t *testing.T) {
	log := &memoryLog{fail: errors.New("disk full")}
	s := NewRecordingSession(log, "", at(0))

	ok, err := s.Record(entity.Metrics{Timestamp: at(1)})
	require.True(t, ok)
	require.Error(t, err)

	// повтор в ту же секунду не порождает новую ошибку
	ok, err = s.Record(entity.Metrics{Timestamp: at(1.5)})
	require.False(t, ok)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.True(t, log.closed)
	require.NotEmpty(t, s.ID)
}
