package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"wrinkle-monitor/config"
	"wrinkle-monitor/internal/container"
	"wrinkle-monitor/internal/infrastructure/camera"
	"wrinkle-monitor/internal/logger"
)

func main() {
	app := &cli.App{
		Name:  "wrinkle-monitor",
		Usage: "TP wrinkle inspection with automatic jig capture",
		Commands: []*cli.Command{
			runCommand(),
			probeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("wrinkle-monitor: %v", err)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Start the inspection loop",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "main-camera", Usage: "main camera index (WM_MAIN_CAMERA)"},
			&cli.IntFlag{Name: "sub-camera", Usage: "jig camera index (WM_SUB_CAMERA)"},
			&cli.StringFlag{Name: "detector", Usage: "native | opencv (WM_DETECTOR)"},
			&cli.StringFlag{Name: "http", Usage: "metrics and preview address, e.g. :9100 (WM_HTTP_ADDR)"},
			&cli.StringFlag{Name: "params", Usage: "YAML parameters file (WM_PARAMS_FILE)"},
			&cli.StringFlag{Name: "capture-dir", Usage: "directory for captures (WM_CAPTURE_DIR)"},
			&cli.StringFlag{Name: "log-dir", Usage: "directory for recording logs (WM_LOG_DIR)"},
			&cli.DurationFlag{Name: "tick", Usage: "loop period (WM_TICK)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug | info | warn | error (WM_LOG_LEVEL)"},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(cfg, l, container.Options{})
	if err != nil {
		return err
	}

	l.Info("wrinkle monitor is running",
		zap.Int("main_camera", cfg.MainCamera),
		zap.Int("sub_camera", cfg.SubCamera),
		zap.String("detector", cfg.Detector),
		zap.String("http", cfg.HTTPAddr),
		zap.Bool("telegram", app.Bot != nil),
	)
	return app.Run(ctx)
}

// Флаги перекрывают переменные окружения.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("main-camera") {
		cfg.MainCamera = c.Int("main-camera")
	}
	if c.IsSet("sub-camera") {
		cfg.SubCamera = c.Int("sub-camera")
	}
	if c.IsSet("detector") {
		cfg.Detector = c.String("detector")
	}
	if c.IsSet("http") {
		cfg.HTTPAddr = c.String("http")
	}
	if c.IsSet("params") {
		cfg.ParamsFile = c.String("params")
	}
	if c.IsSet("capture-dir") {
		cfg.CaptureDir = c.String("capture-dir")
	}
	if c.IsSet("log-dir") {
		cfg.LogDir = c.String("log-dir")
	}
	if c.IsSet("tick") {
		cfg.Tick = c.Duration("tick")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "List camera indices that deliver frames",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max", Value: 5, Usage: "number of indices to try"},
		},
		Action: func(c *cli.Context) error {
			found, err := camera.Probe(c.Int("max"))
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(c.App.Writer, "no cameras found")
				return nil
			}
			for _, idx := range found {
				fmt.Fprintf(c.App.Writer, "camera %d\n", idx)
			}
			return nil
		},
	}
}
