package entity

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DisabledTriggerCount и DisabledSustain фактически выключают автосъёмку
	// при некорректном вводе.
	DisabledTriggerCount = 9999
	DisabledSustain      = 9999 * time.Second
	DefaultCaptureGap    = 10 * time.Second
)

// DetectionParameters параметры детектора складок.
type DetectionParameters struct {
	EdgeThreshold int // порог градиента 0..255
	MinArea       int // минимальная площадь контура, 0 выключает фильтр
	SobelKernel   int // нечётный размер ядра 1..31
}

// DefaultDetectionParameters значения по умолчанию для линии TP.
func DefaultDetectionParameters() DetectionParameters {
	return DetectionParameters{EdgeThreshold: 50, MinArea: 200, SobelKernel: 3}
}

// Normalize приводит параметры к допустимым диапазонам.
func (p DetectionParameters) Normalize() DetectionParameters {
	p.EdgeThreshold = clampInt(p.EdgeThreshold, 0, 255)
	if p.MinArea < 0 {
		p.MinArea = 0
	}
	p.SobelKernel = clampInt(p.SobelKernel, 1, 31)
	if p.SobelKernel%2 == 0 {
		p.SobelKernel++
	}
	return p
}

// TriggerParameters условия автосъёмки второй камерой.
type TriggerParameters struct {
	Count   int           // сколько дефектов считается срабатыванием
	Sustain time.Duration // сколько условие должно держаться
	MinGap  time.Duration // минимальный интервал между снимками
}

// DefaultTriggerParameters значения по умолчанию.
func DefaultTriggerParameters() TriggerParameters {
	return TriggerParameters{Count: 20, Sustain: 5 * time.Second, MinGap: DefaultCaptureGap}
}

// RawControls сырые значения полей ввода в том виде, в каком их прислал интерфейс.
type RawControls struct {
	EdgeThreshold  int
	SobelKernel    int
	MinArea        string
	TriggerCount   string
	SustainSeconds string
	MinGapSeconds  string
}

// Resolve разбирает сырые поля. Некорректный ввод не останавливает конвейер:
// площадь становится 0, автосъёмка выключается, интервал 10 секунд.
func (c RawControls) Resolve() (DetectionParameters, TriggerParameters) {
	det := DetectionParameters{EdgeThreshold: c.EdgeThreshold, SobelKernel: c.SobelKernel}
	if v, err := parseInt(c.MinArea); err == nil {
		det.MinArea = v
	}

	trg := TriggerParameters{Count: DisabledTriggerCount, Sustain: DisabledSustain, MinGap: DefaultCaptureGap}
	count, errCount := parseInt(c.TriggerCount)
	sustain, errSustain := parseInt(c.SustainSeconds)
	if errCount == nil && errSustain == nil {
		trg.Count = count
		trg.Sustain = time.Duration(sustain) * time.Second
	}
	if gap, err := parseInt(c.MinGapSeconds); err == nil {
		trg.MinGap = time.Duration(gap) * time.Second
	}

	return det.Normalize(), trg
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
