package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
	"wrinkle-monitor/internal/infrastructure/vision"
)

var (
	ErrNoFrame          = errors.New("no analysed frame yet")
	ErrNotRecording     = errors.New("recording is not active")
	ErrAlreadyRecording = errors.New("recording is already active")
	ErrBadFileName      = errors.New("file name is not allowed")
)

const stampLayout = "20060102_150405"

// PipelineConfig настройки цикла.
type PipelineConfig struct {
	Tick       time.Duration // период тика, ~50 мс
	LogDir     string        // куда класть журналы без явного пути
	CaptureDir string        // каталог снимков второй камеры и ручных сохранений
}

// PipelineDeps зависимости конвейера.
type PipelineDeps struct {
	Inspection *InspectionService
	Controls   *ControlPanel
	Main       port.FrameSource
	Sub        port.FrameSource
	OpenCamera port.FrameSourceFactory
	Store      port.ImageStore
	OpenLog    port.RecordLogOpener
	Display    port.Display
	Metrics    port.MetricsRecorder
	Status     *StatusBus
	Logger     *zap.Logger
}

// PipelineState снимок состояния для внешних интерфейсов.
type PipelineState struct {
	Metrics   entity.Metrics
	HasFrame  bool
	ROI       entity.ROI
	Recording bool
	SessionID string
	LogPath   string
	Chart     []entity.LogEntry
	Trigger   entity.TriggerState
	Status    string
}

// Pipeline однопоточный цикл: кадр → анализ → запись → автосъёмка → отображение.
// Всё состояние меняется только внутри Run; внешние команды приходят через канал.
type Pipeline struct {
	cfg PipelineConfig
	PipelineDeps

	machine  TriggerMachine
	session  *RecordingSession
	last     *InspectionOutput
	commands chan func()
}

// NewPipeline собирает конвейер.
func NewPipeline(cfg PipelineConfig, deps PipelineDeps) *Pipeline {
	if cfg.Tick <= 0 {
		cfg.Tick = 50 * time.Millisecond
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Status == nil {
		deps.Status = NewStatusBus(16, deps.Logger)
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	return &Pipeline{
		cfg:          cfg,
		PipelineDeps: deps,
		commands:     make(chan func()),
	}
}

// Run крутит цикл до отмены контекста. Падение одного тика не останавливает цикл.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Tick)
	defer ticker.Stop()
	defer p.shutdown()

	p.Logger.Info("pipeline started", zap.Duration("tick", p.cfg.Tick))
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			p.safeTick(ctx, now)
		case cmd := <-p.commands:
			cmd()
		}
	}
}

func (p *Pipeline) safeTick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("tick panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
		}
	}()
	p.Tick(ctx, now)
}

// Tick один проход конвейера.
func (p *Pipeline) Tick(ctx context.Context, now time.Time) {
	raw, ok := read(p.Main)
	if !ok {
		p.Metrics.TickSkipped()
		p.Logger.Debug("no frame from main camera")
		return
	}

	controls := p.Controls.Snapshot()
	out, err := p.Inspection.ProcessFrame(ctx, raw, controls, now)
	if err != nil {
		p.Metrics.TickSkipped()
		p.Logger.Warn("inspection failed", zap.Error(err))
		return
	}
	p.last = out
	p.Metrics.Observe(out.Metrics)

	if p.session != nil {
		p.record(out.Metrics)
	}

	var secondary *image.RGBA
	if frame, ok := read(p.Sub); ok {
		secondary = vision.NormalizeFrame(frame)
	}

	if p.session != nil {
		p.evaluateTrigger(out.Metrics, controls.Trigger, secondary, now)
	}

	if p.Display != nil {
		p.Display.Show(out.Mosaic, secondary)
	}
}

func read(src port.FrameSource) (*image.RGBA, bool) {
	if src == nil {
		return nil, false
	}
	return src.Read()
}

func (p *Pipeline) record(m entity.Metrics) {
	accepted, err := p.session.Record(m)
	if err != nil {
		p.Metrics.PersistFailed("log")
		p.Status.Publish(StatusEvent{Text: fmt.Sprintf("⚠️ LOG 寫入失敗：%v", err)})
		return
	}
	if accepted {
		p.Logger.Debug("sample recorded",
			zap.Int("defects", m.DefectCount),
			zap.Float64("wrinkle_percent", m.WrinklePercent),
		)
	}
}

func (p *Pipeline) evaluateTrigger(m entity.Metrics, params entity.TriggerParameters, secondary *image.RGBA, now time.Time) {
	d := p.machine.Evaluate(&p.session.Trigger, m.DefectCount, params, now)
	if !d.Fire {
		return
	}
	p.Metrics.CaptureFired()

	if secondary == nil {
		p.Status.Publish(StatusEvent{Text: "⚠️ 副攝影機無畫面，略過截圖"})
		return
	}

	name := fmt.Sprintf("jig_%s.png", now.Format(stampLayout))
	path := filepath.Join(p.session.CaptureDir, name)
	p.persist("capture", path, secondary, StatusEvent{Text: "📸 已截圖夾具畫面：" + name, PhotoPath: path})
}

// persist отдаёт снимок пулу записи и не ждёт результата.
func (p *Pipeline) persist(kind, path string, img image.Image, onSaved StatusEvent) {
	err := p.Store.Submit(path, img, func(err error) {
		if err != nil {
			p.Metrics.PersistFailed(kind)
			p.Status.Publish(StatusEvent{Text: "⚠️ 儲存失敗：" + filepath.Base(path)})
			return
		}
		p.Status.Publish(onSaved)
	})
	if err != nil {
		p.Metrics.PersistFailed(kind)
		p.Status.Publish(StatusEvent{Text: "⚠️ 儲存失敗：" + err.Error()})
	}
}

// StartRecording начинает сеанс записи. name только имя файла: каталог всегда LogDir,
// при пустом имени используется имя по умолчанию.
func (p *Pipeline) StartRecording(ctx context.Context, name string) error {
	return p.exec(ctx, func() error { return p.startRecording(name, time.Now()) })
}

// StopRecording завершает сеанс записи.
func (p *Pipeline) StopRecording(ctx context.Context) error {
	return p.exec(ctx, p.stopRecording)
}

// SaveSnapshot сохраняет последний размеченный кадр в CaptureDir и возвращает путь.
func (p *Pipeline) SaveSnapshot(ctx context.Context, name string) (string, error) {
	var saved string
	err := p.exec(ctx, func() error {
		var err error
		saved, err = p.saveSnapshot(name, time.Now())
		return err
	})
	return saved, err
}

// SwitchCameras переоткрывает обе камеры.
func (p *Pipeline) SwitchCameras(ctx context.Context, mainIndex, subIndex int) error {
	return p.exec(ctx, func() error { return p.switchCameras(mainIndex, subIndex) })
}

// State возвращает снимок состояния.
func (p *Pipeline) State(ctx context.Context) (PipelineState, error) {
	var st PipelineState
	err := p.exec(ctx, func() error {
		st = p.state()
		return nil
	})
	return st, err
}

func (p *Pipeline) exec(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case p.commands <- func() { done <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) startRecording(name string, now time.Time) error {
	if p.session != nil {
		return ErrAlreadyRecording
	}
	if name == "" {
		name = fmt.Sprintf("wrinkle_%s.txt", now.Format(stampLayout))
	}
	path, err := confine(p.cfg.LogDir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.cfg.CaptureDir, 0o755); err != nil {
		p.Status.Publish(StatusEvent{Text: "⚠️ 無法建立截圖資料夾"})
		return fmt.Errorf("create capture dir: %w", err)
	}

	log, err := p.OpenLog(path)
	if err != nil {
		p.Metrics.PersistFailed("log")
		p.Status.Publish(StatusEvent{Text: "⚠️ 無法建立 LOG 檔"})
		return fmt.Errorf("open record log: %w", err)
	}

	p.session = NewRecordingSession(log, p.cfg.CaptureDir, now)
	p.Metrics.SetRecording(true)
	p.Logger.Info("recording started", zap.String("session", p.session.ID), zap.String("log", path))
	p.Status.Publish(StatusEvent{Text: "📈 開始記錄中... 檔案：" + filepath.Base(path)})
	return nil
}

func (p *Pipeline) stopRecording() error {
	if p.session == nil {
		return ErrNotRecording
	}
	s := p.session
	p.session = nil
	p.Metrics.SetRecording(false)

	err := s.Close()
	if err != nil {
		p.Logger.Warn("close record log", zap.Error(err))
	}
	p.Logger.Info("recording stopped", zap.String("session", s.ID), zap.Int("rows", s.Appended()))
	p.Status.Publish(StatusEvent{Text: "🛑 停止記錄"})
	return err
}

func (p *Pipeline) saveSnapshot(name string, now time.Time) (string, error) {
	if p.last == nil {
		return "", ErrNoFrame
	}
	if name == "" {
		name = fmt.Sprintf("defect_%s.png", now.Format(stampLayout))
	}
	path, err := confine(p.cfg.CaptureDir, name)
	if err != nil {
		return "", err
	}
	p.persist("snapshot", path, p.last.Annotated, StatusEvent{Text: "✅ 已儲存：" + path, PhotoPath: path})
	return path, nil
}

func (p *Pipeline) switchCameras(mainIndex, subIndex int) error {
	if p.OpenCamera == nil {
		return errors.New("camera factory is not configured")
	}
	main, err := p.OpenCamera(mainIndex)
	if err != nil {
		p.Status.Publish(StatusEvent{Text: fmt.Sprintf("⚠️ 攝影機切換失敗: %v", err)})
		return err
	}
	sub, err := p.OpenCamera(subIndex)
	if err != nil {
		_ = main.Close()
		p.Status.Publish(StatusEvent{Text: fmt.Sprintf("⚠️ 攝影機切換失敗: %v", err)})
		return err
	}

	p.closeCameras()
	p.Main, p.Sub = main, sub
	p.Status.Publish(StatusEvent{Text: fmt.Sprintf("🎥 攝影機已切換為 %d 與 %d", mainIndex, subIndex)})
	return nil
}

func (p *Pipeline) state() PipelineState {
	st := PipelineState{
		ROI:    p.Controls.Snapshot().ROI,
		Status: p.Status.Last(),
	}
	if p.last != nil {
		st.Metrics = p.last.Metrics
		st.HasFrame = true
	}
	if p.session != nil {
		st.Recording = true
		st.SessionID = p.session.ID
		st.LogPath = p.session.LogPath()
		st.Chart = p.session.Chart()
		st.Trigger = p.session.Trigger
	}
	return st
}

// confine оставляет от имени только последний элемент и кладёт его в dir.
func confine(dir, name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("%w: %q", ErrBadFileName, name)
	}
	return filepath.Join(dir, base), nil
}

func (p *Pipeline) closeCameras() {
	for _, src := range []port.FrameSource{p.Main, p.Sub} {
		if src == nil {
			continue
		}
		if err := src.Close(); err != nil {
			p.Logger.Warn("close camera", zap.Error(err))
		}
	}
}

func (p *Pipeline) shutdown() {
	if p.session != nil {
		_ = p.stopRecording()
	}
	p.closeCameras()
	p.Logger.Info("pipeline stopped")
}

type nopMetrics struct{}

func (nopMetrics) Observe(entity.Metrics) {}
func (nopMetrics) TickSkipped()           {}
func (nopMetrics) CaptureFired()          {}
func (nopMetrics) PersistFailed(string)   {}
func (nopMetrics) SetRecording(bool)      {}
