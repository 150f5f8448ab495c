package app

import (
	"time"

	"wrinkle-monitor/internal/domain/entity"
)

// TriggerDecision итог оценки автомата на одном тике.
type TriggerDecision struct {
	Phase   entity.TriggerPhase
	Fire    bool          // нужно снять кадр второй камерой
	Elapsed time.Duration // сколько условие держится
}

// TriggerMachine решает, когда снимать кадр второй камерой. Параметры читаются
// на каждом тике, автомат хранит только TriggerState.
type TriggerMachine struct{}

// Evaluate продвигает состояние на один тик.
//
// Один «хороший» кадр (count < порога) сбрасывает выдержку. На тике, когда условие
// впервые выполнено, снимок не делается даже при нулевой выдержке. Пауза между
// снимками действует только внутри одной непрерывной серии.
func (TriggerMachine) Evaluate(state *entity.TriggerState, defectCount int, params entity.TriggerParameters, now time.Time) TriggerDecision {
	if defectCount < params.Count {
		state.Disarm()
		return TriggerDecision{Phase: entity.PhaseIdle}
	}

	if !state.Armed() {
		state.Arm(now)
		return TriggerDecision{Phase: entity.PhaseDwelling}
	}

	elapsed := now.Sub(state.ArmedSince)
	if elapsed < params.Sustain {
		return TriggerDecision{Phase: entity.PhaseDwelling, Elapsed: elapsed}
	}

	if !state.LastCaptureAt.IsZero() && now.Sub(state.LastCaptureAt) < params.MinGap {
		return TriggerDecision{Phase: entity.PhaseReady, Elapsed: elapsed}
	}

	state.LastCaptureAt = now
	return TriggerDecision{Phase: entity.PhaseFired, Fire: true, Elapsed: elapsed}
}
