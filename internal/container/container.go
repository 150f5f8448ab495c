package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wrinkle-monitor/config"
	telegram "wrinkle-monitor/internal/api"
	"wrinkle-monitor/internal/api/preview"
	app "wrinkle-monitor/internal/application"
	"wrinkle-monitor/internal/domain/port"
	"wrinkle-monitor/internal/infrastructure/camera"
	"wrinkle-monitor/internal/infrastructure/metrics"
	"wrinkle-monitor/internal/infrastructure/storage"
	"wrinkle-monitor/internal/infrastructure/vision"
)

const (
	statusBuffer = 64
	saveQueue    = 32
)

type Container struct {
	Controls *app.ControlPanel
	Status   *app.StatusBus
	Pipeline *app.Pipeline

	Writer   *storage.ImageWriter
	Recorder *metrics.Recorder
	Display  *preview.Display
	Server   *preview.Server // nil если HTTP выключен
	Bot      *telegram.Bot   // nil если нет токена

	logger *zap.Logger
}

// Options зависимости, которые подменяются в тестах.
type Options struct {
	OpenCamera port.FrameSourceFactory
	NewBot     func(panel *app.ControlPanel, pipeline *app.Pipeline, save func() error) (*telegram.Bot, error)
}

func New(cfg *config.Config, logger *zap.Logger, opts Options) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	params, err := config.LoadParams(cfg.ParamsFile)
	if err != nil {
		logger.Warn("params file ignored, using defaults", zap.Error(err))
	}
	roi, det, trg := params.Apply()
	controls := app.NewControlPanel(roi, det, trg)

	status := app.NewStatusBus(statusBuffer, logger.Named("status"))
	recorder := metrics.NewRecorder(true)
	writer := storage.NewImageWriter(cfg.SaveWorkers, saveQueue, logger.Named("writer"))
	display := preview.NewDisplay()

	openCamera := opts.OpenCamera
	if openCamera == nil {
		openCamera = camera.Factory(cfg.FrameMaxAge, logger.Named("camera"))
	}
	mainCam := openOptional(openCamera, cfg.MainCamera, "main", logger, status)
	subCam := openOptional(openCamera, cfg.SubCamera, "sub", logger, status)

	pipeline := app.NewPipeline(app.PipelineConfig{
		Tick:       cfg.Tick,
		LogDir:     cfg.LogDir,
		CaptureDir: cfg.CaptureDir,
	}, app.PipelineDeps{
		Inspection: app.NewInspectionService(selectDetector(cfg.Detector, logger)),
		Controls:   controls,
		Main:       mainCam,
		Sub:        subCam,
		OpenCamera: openCamera,
		Store:      writer,
		OpenLog:    storage.Opener,
		Display:    display,
		Metrics:    recorder,
		Status:     status,
		Logger:     logger.Named("pipeline"),
	})

	c := &Container{
		Controls: controls,
		Status:   status,
		Pipeline: pipeline,
		Writer:   writer,
		Recorder: recorder,
		Display:  display,
		logger:   logger,
	}

	if cfg.HTTPAddr != "" {
		c.Server = preview.NewServer(cfg.HTTPAddr, display, recorder.Handler(), status.Last, logger.Named("http"))
	}

	var save func() error
	if cfg.ParamsFile != "" {
		save = func() error {
			s := controls.Snapshot()
			return config.SaveParams(cfg.ParamsFile, config.ParamsFrom(s.ROI, s.Detection, s.Trigger))
		}
	}

	newBot := opts.NewBot
	if newBot == nil && cfg.TelegramToken != "" {
		newBot = func(panel *app.ControlPanel, p *app.Pipeline, save func() error) (*telegram.Bot, error) {
			return telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, p, panel, save, logger.Named("telegram"))
		}
	}
	if newBot != nil {
		bot, err := newBot(controls, pipeline, save)
		if err != nil {
			return nil, fmt.Errorf("create bot: %w", err)
		}
		if bot != nil {
			c.Bot = bot
			status.AddNotifier(bot)
		}
	}

	return c, nil
}

// Run запускает все части и ждёт отмены контекста. Очередь записи дописывается до конца.
func (c *Container) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.Status.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return c.Pipeline.Run(gctx)
	})
	if c.Server != nil {
		g.Go(func() error {
			return c.Server.Run(gctx)
		})
	}
	if c.Bot != nil {
		g.Go(func() error {
			return c.Bot.Run(gctx)
		})
	}

	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cerr := c.Writer.Close(closeCtx); cerr != nil {
		c.logger.Warn("image writer close", zap.Error(cerr))
	}
	return err
}

func selectDetector(name string, logger *zap.Logger) port.DefectDetector {
	if name == "opencv" {
		if vision.OpenCVAvailable {
			logger.Info("using opencv detector")
			return vision.NewOpenCVDetector()
		}
		logger.Warn("opencv detector requested but binary built without gocv, using native")
	}
	return vision.NewSobelDetector()
}

// Камера, которая не открылась, не мешает запуску: тики просто пропускаются.
func openOptional(open port.FrameSourceFactory, index int, role string, logger *zap.Logger, status *app.StatusBus) port.FrameSource {
	src, err := open(index)
	if err != nil {
		logger.Warn("camera unavailable", zap.String("role", role), zap.Int("index", index), zap.Error(err))
		status.Publish(app.StatusEvent{Text: fmt.Sprintf("⚠️ 攝影機 %d 無法開啟", index)})
		return nil
	}
	return src
}
