package entity

import "time"

// TriggerPhase фаза автомата автосъёмки
type TriggerPhase string

const (
	PhaseIdle     TriggerPhase = "idle"     // условие не выполнено
	PhaseDwelling TriggerPhase = "dwelling" // условие держится, ждём выдержку
	PhaseReady    TriggerPhase = "ready"    // выдержка пройдена, ждём окончания паузы
	PhaseFired    TriggerPhase = "fired"    // на этом тике сделан снимок
)

// TriggerState состояние автомата автосъёмки. Нулевое время означает «не задано».
type TriggerState struct {
	ArmedSince    time.Time
	LastCaptureAt time.Time
}

// Armed сообщает, отсчитывается ли выдержка.
func (s TriggerState) Armed() bool {
	return !s.ArmedSince.IsZero()
}

// Arm начинает отсчёт выдержки. Пауза после прошлого снимка при этом
// обнуляется: новая серия дефектов снимается без ожидания.
func (s *TriggerState) Arm(now time.Time) {
	s.ArmedSince = now
	s.LastCaptureAt = time.Time{}
}

// Disarm сбрасывает выдержку.
func (s *TriggerState) Disarm() {
	s.ArmedSince = time.Time{}
}
