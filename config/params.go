package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"wrinkle-monitor/internal/domain/entity"
)

// Params сохраняемые параметры оператора.
type Params struct {
	EdgeThreshold  int `yaml:"edge_threshold"`
	MinArea        int `yaml:"min_area"`
	SobelKernel    int `yaml:"sobel_ksize"`
	ROIWidth       int `yaml:"roi_width"`
	ROIHeight      int `yaml:"roi_height"`
	TriggerCount   int `yaml:"trigger_count"`
	TriggerSeconds int `yaml:"trigger_seconds"`
	CaptureGap     int `yaml:"capture_gap"`
}

// DefaultParams значения по умолчанию.
func DefaultParams() Params {
	return ParamsFrom(entity.DefaultROI(), entity.DefaultDetectionParameters(), entity.DefaultTriggerParameters())
}

// ParamsFrom собирает Params из рабочих значений.
func ParamsFrom(roi entity.ROI, det entity.DetectionParameters, trg entity.TriggerParameters) Params {
	return Params{
		EdgeThreshold:  det.EdgeThreshold,
		MinArea:        det.MinArea,
		SobelKernel:    det.SobelKernel,
		ROIWidth:       roi.Width,
		ROIHeight:      roi.Height,
		TriggerCount:   trg.Count,
		TriggerSeconds: int(trg.Sustain / time.Second),
		CaptureGap:     int(trg.MinGap / time.Second),
	}
}

// Apply раскладывает параметры обратно. Позиция ROI берётся по умолчанию,
// размеры и параметры детектора приводятся к допустимым.
func (p Params) Apply() (entity.ROI, entity.DetectionParameters, entity.TriggerParameters) {
	roi := entity.DefaultROI().Resize(p.ROIWidth, p.ROIHeight)
	det := entity.DetectionParameters{
		EdgeThreshold: p.EdgeThreshold,
		MinArea:       p.MinArea,
		SobelKernel:   p.SobelKernel,
	}.Normalize()
	trg := entity.TriggerParameters{
		Count:   p.TriggerCount,
		Sustain: time.Duration(p.TriggerSeconds) * time.Second,
		MinGap:  time.Duration(p.CaptureGap) * time.Second,
	}
	if trg.MinGap < 0 {
		trg.MinGap = entity.DefaultCaptureGap
	}
	return roi, det, trg
}

// LoadParams читает YAML. Отсутствующий файл не ошибка: возвращаются значения по умолчанию.
// Отсутствующие ключи сохраняют значения по умолчанию.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read params: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return DefaultParams(), fmt.Errorf("parse params %s: %w", path, err)
	}
	return p, nil
}

// SaveParams записывает параметры в YAML.
func SaveParams(path string, p Params) error {
	if path == "" {
		return errors.New("params file is not configured")
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create params dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write params: %w", err)
	}
	return nil
}
