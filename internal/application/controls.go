package app

import (
	"fmt"
	"strconv"
	"sync"

	"wrinkle-monitor/internal/domain/entity"
)

// ControlSnapshot значения органов управления на момент тика.
type ControlSnapshot struct {
	ROI       entity.ROI
	Detection entity.DetectionParameters
	Trigger   entity.TriggerParameters
}

// ControlPanel живые настройки, которые меняет внешний интерфейс
// (бот, файл параметров) и читает конвейер на каждом тике.
type ControlPanel struct {
	mu   sync.RWMutex
	roi  entity.ROI
	raw  entity.RawControls
	drag *dragState
}

type dragState struct{ x, y int }

// NewControlPanel создаёт панель с начальными значениями.
func NewControlPanel(roi entity.ROI, det entity.DetectionParameters, trg entity.TriggerParameters) *ControlPanel {
	return &ControlPanel{
		roi: roi.Clamp(),
		raw: entity.RawControls{
			EdgeThreshold:  det.EdgeThreshold,
			SobelKernel:    det.SobelKernel,
			MinArea:        strconv.Itoa(det.MinArea),
			TriggerCount:   strconv.Itoa(trg.Count),
			SustainSeconds: strconv.Itoa(int(trg.Sustain.Seconds())),
			MinGapSeconds:  strconv.Itoa(int(trg.MinGap.Seconds())),
		},
	}
}

// Snapshot возвращает согласованный набор значений для одного тика.
func (c *ControlPanel) Snapshot() ControlSnapshot {
	c.mu.RLock()
	roi, raw := c.roi, c.raw
	c.mu.RUnlock()

	det, trg := raw.Resolve()
	return ControlSnapshot{ROI: roi.Clamp(), Detection: det, Trigger: trg}
}

// Raw сырые значения полей.
func (c *ControlPanel) Raw() entity.RawControls {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.raw
}

// SetROI задаёт зону целиком.
func (c *ControlPanel) SetROI(roi entity.ROI) entity.ROI {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roi = roi.Clamp()
	return c.roi
}

// ResizeROI меняет размер зоны.
func (c *ControlPanel) ResizeROI(width, height int) entity.ROI {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roi = c.roi.Resize(width, height)
	return c.roi
}

// BeginDrag начинает перетаскивание, если точка попала в зону.
func (c *ControlPanel) BeginDrag(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.roi.Contains(x, y) {
		c.drag = nil
		return false
	}
	c.drag = &dragState{x: x, y: y}
	return true
}

// DragTo сдвигает зону вслед за указателем.
func (c *ControlPanel) DragTo(x, y int) entity.ROI {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return c.roi
	}
	c.roi = c.roi.Move(x-c.drag.x, y-c.drag.y)
	c.drag.x, c.drag.y = x, y
	return c.roi
}

// EndDrag завершает перетаскивание.
func (c *ControlPanel) EndDrag() {
	c.mu.Lock()
	c.drag = nil
	c.mu.Unlock()
}

// Set меняет один параметр по имени. Текстовые поля принимаются как есть:
// некорректное значение не ломает конвейер, а включает безопасное значение по умолчанию.
func (c *ControlPanel) Set(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "edge":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("edge: %w", err)
		}
		c.raw.EdgeThreshold = v
	case "ksize":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ksize: %w", err)
		}
		c.raw.SobelKernel = v
	case "area":
		c.raw.MinArea = value
	case "count":
		c.raw.TriggerCount = value
	case "sustain":
		c.raw.SustainSeconds = value
	case "gap":
		c.raw.MinGapSeconds = value
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}
