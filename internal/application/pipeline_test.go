package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
	"wrinkle-monitor/internal/infrastructure/vision"
)

type staticSource struct {
	frame  *image.RGBA
	closed bool
}

func (s *staticSource) Read() (*image.RGBA, bool) {
	if s.frame == nil {
		return nil, false
	}
	return s.frame, true
}

func (s *staticSource) Close() error {
	s.closed = true
	return nil
}

type fakeStore struct {
	paths []string
	fail  error
}

func (s *fakeStore) Submit(path string, img image.Image, done func(error)) error {
	s.paths = append(s.paths, path)
	done(s.fail)
	return nil
}

type fakeDisplay struct{ shown int }

func (d *fakeDisplay) Show(mosaic, secondary *image.RGBA) { d.shown++ }

// wrinkledFrame кадр с сеткой светлых квадратов, каждый даёт отдельный дефект.
func wrinkledFrame() *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, 320, 240))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y0 := 70; y0 < 170; y0 += 20 {
		for x0 := 90; x0 < 230; x0 += 20 {
			for y := y0; y < y0+8; y++ {
				for x := x0; x < x0+8; x++ {
					frame.SetRGBA(x, y, white)
				}
			}
		}
	}
	return frame
}

type harness struct {
	pipeline *Pipeline
	main     *staticSource
	sub      *staticSource
	store    *fakeStore
	display  *fakeDisplay
	logs     []*memoryLog
	controls *ControlPanel
	logDir   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		main:    &staticSource{frame: wrinkledFrame()},
		sub:     &staticSource{frame: image.NewRGBA(image.Rect(0, 0, 640, 480))},
		store:   &fakeStore{},
		display: &fakeDisplay{},
		controls: NewControlPanel(entity.DefaultROI(), entity.DefaultDetectionParameters(),
			entity.TriggerParameters{Count: 6, Sustain: 2 * time.Second, MinGap: 10 * time.Second}),
	}
	require.NoError(t, h.controls.Set("area", "0"))

	dir := t.TempDir()
	h.logDir = dir
	h.pipeline = NewPipeline(PipelineConfig{LogDir: dir, CaptureDir: filepath.Join(dir, "captures")}, PipelineDeps{
		Inspection: NewInspectionService(vision.NewSobelDetector()),
		Controls:   h.controls,
		Main:       h.main,
		Sub:        h.sub,
		Store:      h.store,
		OpenLog: func(path string) (port.RecordLog, error) {
			l := &memoryLog{path: path}
			h.logs = append(h.logs, l)
			return l, nil
		},
		Display: h.display,
		Status:  NewStatusBus(64, nil),
	})
	return h
}

func TestPipelineSkipsTickWithoutFrame(t *testing.T) {
	h := newHarness(t)
	h.main.frame = nil

	h.pipeline.Tick(context.Background(), at(0))
	require.Zero(t, h.display.shown)
	require.Nil(t, h.pipeline.last)
}

func TestPipelineTickWithoutRecording(t *testing.T) {
	h := newHarness(t)
	h.pipeline.Tick(context.Background(), at(0))

	require.Equal(t, 1, h.display.shown)
	out := h.pipeline.last
	require.NotNil(t, out)
	require.Greater(t, out.Metrics.DefectCount, 6)
	require.Equal(t, image.Rect(0, 0, 640, 480), out.Mosaic.Bounds())
	for _, d := range out.Defects {
		require.True(t, d.Rect().In(out.ROI), "дефект %v вне зоны", d.Rect())
	}
	require.Empty(t, h.store.paths)
}

func TestPipelineRecordingAndTrigger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.pipeline.startRecording("", at(0)))
	require.ErrorIs(t, h.pipeline.startRecording("", at(0)), ErrAlreadyRecording)

	for tick := 0; tick <= 100; tick++ { // 5 секунд
		h.pipeline.Tick(ctx, t0.Add(time.Duration(tick)*50*time.Millisecond))
	}

	require.Len(t, h.logs, 1)
	require.Len(t, h.logs[0].entries, 6, "по одной строке на секунду 0..5")
	require.Len(t, h.store.paths, 1)
	require.Equal(t, "jig_"+at(2).Format(stampLayout)+".png", filepath.Base(h.store.paths[0]))
	require.True(t, strings.HasPrefix(h.pipeline.Status.Last(), "📸"))

	st := h.pipeline.state()
	require.True(t, st.Recording)
	require.Equal(t, at(2), st.Trigger.LastCaptureAt)
	require.Len(t, st.Chart, 6)

	require.NoError(t, h.pipeline.stopRecording())
	require.True(t, h.logs[0].closed)
	require.ErrorIs(t, h.pipeline.stopRecording(), ErrNotRecording)

	// без записи автосъёмка не работает
	h.pipeline.Tick(ctx, at(30))
	require.Len(t, h.store.paths, 1)
}

func TestPipelineTriggerWithoutSecondaryFrame(t *testing.T) {
	h := newHarness(t)
	h.sub.frame = nil
	require.NoError(t, h.pipeline.startRecording("", at(0)))

	h.pipeline.Tick(context.Background(), at(0))
	h.pipeline.Tick(context.Background(), at(2))
	require.Empty(t, h.store.paths)
	require.Contains(t, h.pipeline.Status.Last(), "副攝影機")
}

func TestPipelinePersistFailureIsStatusOnly(t *testing.T) {
	h := newHarness(t)
	h.store.fail = errors.New("disk full")
	h.pipeline.Tick(context.Background(), at(0))

	path, err := h.pipeline.saveSnapshot("", at(0))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(filepath.Base(path), "defect_"))
	require.Contains(t, h.pipeline.Status.Last(), "儲存失敗")
}

func TestPipelineFileNamesStayInsideDirs(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.pipeline.startRecording("../x", at(0)))
	require.Equal(t, filepath.Join(h.logDir, "x"), h.logs[0].Path())
	require.NoError(t, h.pipeline.stopRecording())

	require.NoError(t, h.pipeline.startRecording("/etc/important", at(1)))
	require.Equal(t, filepath.Join(h.logDir, "important"), h.logs[1].Path())
	require.NoError(t, h.pipeline.stopRecording())

	require.ErrorIs(t, h.pipeline.startRecording("..", at(2)), ErrBadFileName)
	require.Len(t, h.logs, 2)

	h.pipeline.Tick(context.Background(), at(3))
	path, err := h.pipeline.saveSnapshot("../../tmp/evil.png", at(3))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(h.logDir, "captures", "evil.png"), path)
	require.Equal(t, []string{path}, h.store.paths)
}

func TestPipelineSnapshotNeedsFrame(t *testing.T) {
	h := newHarness(t)
	_, err := h.pipeline.saveSnapshot("", at(0))
	require.ErrorIs(t, err, ErrNoFrame)
}

func TestPipelineSwitchCameras(t *testing.T) {
	h := newHarness(t)
	opened := map[int]*staticSource{}
	h.pipeline.OpenCamera = func(index int) (port.FrameSource, error) {
		if index < 0 {
			return nil, errors.New("no such camera")
		}
		s := &staticSource{frame: wrinkledFrame()}
		opened[index] = s
		return s, nil
	}

	require.Error(t, h.pipeline.switchCameras(3, -1))
	require.False(t, h.main.closed)
	require.True(t, opened[3].closed)

	require.NoError(t, h.pipeline.switchCameras(4, 5))
	require.True(t, h.main.closed)
	require.True(t, h.sub.closed)
	require.Same(t, opened[4], h.pipeline.Main)
}

func TestPipelineRunServesCommands(t *testing.T) {
	h := newHarness(t)
	h.pipeline.cfg.Tick = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.pipeline.Run(ctx) }()

	require.NoError(t, h.pipeline.StartRecording(ctx, ""))
	require.Eventually(t, func() bool {
		st, err := h.pipeline.State(ctx)
		return err == nil && st.HasFrame && st.Recording
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.True(t, h.main.closed)
	require.Len(t, h.logs, 1)
	require.True(t, h.logs[0].closed, "остановка цикла закрывает журнал")
}
