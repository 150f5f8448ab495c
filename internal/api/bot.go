package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "wrinkle-monitor/internal/application"
	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
)

const (
	msgStart = `👋 皺褶監控已連線。

📋 指令：
/status — 目前狀態
/record [檔名] — 開始記錄
/stop — 停止記錄
/snapshot — 儲存目前畫面
/help — 說明`

	msgHelp = `ℹ️ 指令說明：

/status — 區塊數、皺褶%、記錄狀態
/record [檔名] — 開始記錄 LOG
/stop — 停止記錄
/snapshot [檔名] — 儲存標註畫面
/set <參數> <值> — edge, ksize, area, count, sustain, gap
/roi <x> <y> <寬> <高> — 設定偵測區域
/cameras <主> <副> — 切換攝影機
/save — 儲存參數`

	msgUnknownCommand = "❓ 未知指令，請用 /help"
	msgNotAllowed     = "⛔ 此聊天室無權限"
	msgBusy           = "⚠️ 系統忙碌，請稍後再試"
)

// Controller команды конвейера, доступные из бота.
type Controller interface {
	StartRecording(ctx context.Context, name string) error
	StopRecording(ctx context.Context) error
	SaveSnapshot(ctx context.Context, name string) (string, error)
	SwitchCameras(ctx context.Context, mainIndex, subIndex int) error
	State(ctx context.Context) (app.PipelineState, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot представляет Telegram-бота: пульт оператора и канал уведомлений.
type Bot struct {
	api        *tgbotapi.BotAPI
	send       sender
	chatID     int64
	ctrl       Controller
	panel      *app.ControlPanel
	saveParams func() error
	logger     *zap.Logger
}

// NewBot создаёт нового бота. Команды принимаются только из chatID.
func NewBot(token string, chatID int64, ctrl Controller, panel *app.ControlPanel, saveParams func() error, logger *zap.Logger) (*Bot, error) {
	if chatID == 0 {
		return nil, errors.New("telegram: chat id is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("telegram authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:        api,
		send:       api,
		chatID:     chatID,
		ctrl:       ctrl,
		panel:      panel,
		saveParams: saveParams,
		logger:     logger,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.allowed(msg.Chat.ID) {
		b.logger.Warn("message from foreign chat", zap.Int64("chat", msg.Chat.ID))
		b.sendMessage(msg.Chat.ID, msgNotAllowed)
		return
	}
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
		return
	}
	b.sendMessage(msg.Chat.ID, b.reply(ctx, msg.Command(), msg.CommandArguments()))
}

// Без настроенного чата бот не принимает команд ни от кого.
func (b *Bot) allowed(chatID int64) bool {
	return b.chatID != 0 && b.chatID == chatID
}

// reply выполняет команду и возвращает текст ответа
func (b *Bot) reply(ctx context.Context, command, args string) string {
	fields := strings.Fields(args)

	switch command {
	case "start":
		return msgStart

	case "help":
		return msgHelp

	case "status":
		st, err := b.ctrl.State(ctx)
		if err != nil {
			return msgBusy
		}
		return formatState(st)

	case "record":
		path := ""
		if len(fields) > 0 {
			path = fields[0]
		}
		if err := b.ctrl.StartRecording(ctx, path); err != nil {
			if errors.Is(err, app.ErrAlreadyRecording) {
				return "⚠️ 已在記錄中"
			}
			return "⚠️ 無法開始記錄: " + err.Error()
		}
		return "📈 開始記錄"

	case "stop":
		if err := b.ctrl.StopRecording(ctx); err != nil {
			if errors.Is(err, app.ErrNotRecording) {
				return "⚠️ 尚未開始記錄"
			}
			return "⚠️ " + err.Error()
		}
		return "🛑 停止記錄"

	case "snapshot":
		path := ""
		if len(fields) > 0 {
			path = fields[0]
		}
		saved, err := b.ctrl.SaveSnapshot(ctx, path)
		if err != nil {
			if errors.Is(err, app.ErrNoFrame) {
				return "⚠️ 尚無畫面"
			}
			return "⚠️ " + err.Error()
		}
		return "⏳ 儲存中：" + saved

	case "set":
		if len(fields) != 2 {
			return "用法：/set <edge|ksize|area|count|sustain|gap> <值>"
		}
		if err := b.panel.Set(fields[0], fields[1]); err != nil {
			return "⚠️ " + err.Error()
		}
		s := b.panel.Snapshot()
		return fmt.Sprintf("✅ edge=%d ksize=%d area=%d count=%d sustain=%s gap=%s",
			s.Detection.EdgeThreshold, s.Detection.SobelKernel, s.Detection.MinArea,
			s.Trigger.Count, s.Trigger.Sustain, s.Trigger.MinGap)

	case "roi":
		v, err := ints(fields, 4)
		if err != nil {
			return "用法：/roi <x> <y> <寬> <高>"
		}
		roi := b.panel.SetROI(entity.ROI{X: v[0], Y: v[1], Width: v[2], Height: v[3]})
		return fmt.Sprintf("✅ ROI %d,%d %dx%d", roi.X, roi.Y, roi.Width, roi.Height)

	case "cameras":
		v, err := ints(fields, 2)
		if err != nil {
			return "用法：/cameras <主> <副>"
		}
		if err := b.ctrl.SwitchCameras(ctx, v[0], v[1]); err != nil {
			return "⚠️ 攝影機切換失敗: " + err.Error()
		}
		return fmt.Sprintf("🎥 攝影機 %d / %d", v[0], v[1])

	case "save":
		if b.saveParams == nil {
			return "⚠️ 未設定參數檔"
		}
		if err := b.saveParams(); err != nil {
			return "⚠️ 參數儲存失敗: " + err.Error()
		}
		return "💾 參數已儲存"

	default:
		return msgUnknownCommand
	}
}

func formatState(st app.PipelineState) string {
	var sb strings.Builder
	if st.HasFrame {
		fmt.Fprintf(&sb, "🔍 區塊數: %d\n📐 皺褶%%: %.2f\n", st.Metrics.DefectCount, st.Metrics.WrinklePercent)
	} else {
		sb.WriteString("🔍 尚無畫面\n")
	}
	fmt.Fprintf(&sb, "🎯 ROI: %d,%d %dx%d\n", st.ROI.X, st.ROI.Y, st.ROI.Width, st.ROI.Height)
	if st.Recording {
		fmt.Fprintf(&sb, "📈 記錄中: %s (%d 筆)\n", st.LogPath, len(st.Chart))
		if st.Trigger.Armed() {
			sb.WriteString("⏱ 觸發計時中\n")
		}
	} else {
		sb.WriteString("⏸ 未記錄\n")
	}
	sb.WriteString("💬 " + st.Status)
	return sb.String()
}

func ints(fields []string, n int) ([]int, error) {
	if len(fields) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Notify отправляет статус в рабочий чат
func (b *Bot) Notify(ctx context.Context, text string) error {
	if b.chatID == 0 {
		return nil
	}
	_, err := b.send.Send(tgbotapi.NewMessage(b.chatID, text))
	return err
}

// NotifyPhoto отправляет сохранённый снимок
func (b *Bot) NotifyPhoto(ctx context.Context, path, caption string) error {
	if b.chatID == 0 {
		return nil
	}
	photo := tgbotapi.NewPhoto(b.chatID, tgbotapi.FilePath(path))
	photo.Caption = caption
	_, err := b.send.Send(photo)
	return err
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.send.Send(msg); err != nil {
		b.logger.Warn("send message", zap.Error(err))
	}
}

var _ port.StatusNotifier = (*Bot)(nil)
