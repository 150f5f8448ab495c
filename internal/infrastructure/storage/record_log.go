package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
)

const (
	// LogHeader заголовок журнала: число областей, % складок, время.
	LogHeader = "區塊數,皺褶%,時間"

	timeLayout = "15:04:05"
)

// FileRecordLog журнал измерений в текстовом CSV-подобном файле.
type FileRecordLog struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// OpenRecordLog создаёт (или перезаписывает) файл и пишет заголовок.
func OpenRecordLog(path string) (*FileRecordLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	if _, err := f.WriteString(LogHeader + "\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &FileRecordLog{path: path, file: f}, nil
}

// Opener адаптер для port.RecordLogOpener.
func Opener(path string) (port.RecordLog, error) {
	return OpenRecordLog(path)
}

// Append дописывает строку журнала
func (l *FileRecordLog) Append(entry entity.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return os.ErrClosed
	}
	if _, err := l.file.WriteString(FormatLogRow(entry) + "\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// Path путь к файлу журнала
func (l *FileRecordLog) Path() string {
	return l.path
}

// Close закрывает файл
func (l *FileRecordLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// FormatLogRow форматирует запись: процент с двумя знаками, местное время ЧЧ:ММ:СС.
func FormatLogRow(e entity.LogEntry) string {
	return fmt.Sprintf("%d,%.2f,%s", e.DefectCount, e.WrinklePercent, e.Timestamp.Local().Format(timeLayout))
}

// ParseLogRow разбирает строку журнала. Дата в файле не хранится, её задаёт day.
func ParseLogRow(line string, day time.Time) (entity.LogEntry, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 3 {
		return entity.LogEntry{}, fmt.Errorf("log row %q: expected 3 fields", line)
	}
	count, err := strconv.Atoi(parts[0])
	if err != nil {
		return entity.LogEntry{}, fmt.Errorf("log row defect count: %w", err)
	}
	percent, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return entity.LogEntry{}, fmt.Errorf("log row wrinkle percent: %w", err)
	}
	clock, err := time.ParseInLocation(timeLayout, parts[2], time.Local)
	if err != nil {
		return entity.LogEntry{}, fmt.Errorf("log row time: %w", err)
	}
	y, m, d := day.In(time.Local).Date()
	ts := time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local)
	return entity.LogEntry{DefectCount: count, WrinklePercent: percent, Timestamp: ts}, nil
}

// ReadRecordLog читает журнал целиком, пропуская заголовок.
func ReadRecordLog(path string, day time.Time) ([]entity.LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("empty log")
	}
	if strings.TrimSpace(scanner.Text()) != LogHeader {
		return nil, fmt.Errorf("unexpected log header %q", scanner.Text())
	}

	var entries []entity.LogEntry
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		e, err := ParseLogRow(scanner.Text(), day)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

// Проверка реализации интерфейса
var _ port.RecordLog = (*FileRecordLog)(nil)
