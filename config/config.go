package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string
	TelegramChatID int64

	MainCamera  int
	SubCamera   int
	FrameMaxAge time.Duration

	CaptureDir  string
	LogDir      string
	ParamsFile  string
	SaveWorkers int

	Tick     time.Duration
	Detector string // native | opencv
	HTTPAddr string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		CaptureDir:    getEnv("WM_CAPTURE_DIR", defaultCaptureDir()),
		LogDir:        getEnv("WM_LOG_DIR", "."),
		ParamsFile:    os.Getenv("WM_PARAMS_FILE"),
		Detector:      getEnv("WM_DETECTOR", "native"),
		HTTPAddr:      os.Getenv("WM_HTTP_ADDR"),
		LogLevel:      getEnv("WM_LOG_LEVEL", "info"),
		LogFormat:     getEnv("WM_LOG_FORMAT", "console"),
	}

	var err error
	if cfg.TelegramChatID, err = getInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.MainCamera, err = getInt("WM_MAIN_CAMERA", 1); err != nil {
		return nil, err
	}
	if cfg.SubCamera, err = getInt("WM_SUB_CAMERA", 2); err != nil {
		return nil, err
	}
	if cfg.SaveWorkers, err = getInt("WM_SAVE_WORKERS", 2); err != nil {
		return nil, err
	}
	if cfg.Tick, err = getDuration("WM_TICK", 50*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FrameMaxAge, err = getDuration("WM_FRAME_MAX_AGE", 2*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения после env и флагов.
func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick)
	}
	if c.SaveWorkers < 1 {
		return fmt.Errorf("save workers must be >= 1, got %d", c.SaveWorkers)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	switch c.Detector {
	case "native", "opencv":
	default:
		return fmt.Errorf("unknown detector %q", c.Detector)
	}
	return nil
}

// Снимки второй камеры по умолчанию лежат рядом с исполняемым файлом.
func defaultCaptureDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "captures"
	}
	return filepath.Join(filepath.Dir(exe), "captures")
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
