package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "wrinkle-monitor/internal/application"
	"wrinkle-monitor/internal/domain/entity"
)

type fakeController struct {
	recording bool
	hasFrame  bool
	cameras   [2]int
}

func (f *fakeController) StartRecording(ctx context.Context, name string) error {
	if f.recording {
		return app.ErrAlreadyRecording
	}
	f.recording = true
	return nil
}

func (f *fakeController) StopRecording(ctx context.Context) error {
	if !f.recording {
		return app.ErrNotRecording
	}
	f.recording = false
	return nil
}

func (f *fakeController) SaveSnapshot(ctx context.Context, name string) (string, error) {
	if !f.hasFrame {
		return "", app.ErrNoFrame
	}
	return "captures/defect.png", nil
}

func (f *fakeController) SwitchCameras(ctx context.Context, mainIndex, subIndex int) error {
	if mainIndex < 0 {
		return errors.New("no such camera")
	}
	f.cameras = [2]int{mainIndex, subIndex}
	return nil
}

func (f *fakeController) State(ctx context.Context) (app.PipelineState, error) {
	return app.PipelineState{
		HasFrame:  f.hasFrame,
		Metrics:   entity.Metrics{DefectCount: 21, WrinklePercent: 3.5},
		ROI:       entity.DefaultROI(),
		Recording: f.recording,
		Status:    "準備就緒",
	}, nil
}

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func newTestBot(ctrl Controller, chatID int64) (*Bot, *fakeSender) {
	s := &fakeSender{}
	return &Bot{
		send:   s,
		chatID: chatID,
		ctrl:   ctrl,
		panel:  app.NewControlPanel(entity.DefaultROI(), entity.DefaultDetectionParameters(), entity.DefaultTriggerParameters()),
		logger: zap.NewNop(),
	}, s
}

func TestBotRecordingCommands(t *testing.T) {
	ctrl := &fakeController{}
	b, _ := newTestBot(ctrl, 0)
	ctx := context.Background()

	require.Equal(t, "⚠️ 尚未開始記錄", b.reply(ctx, "stop", ""))
	require.Equal(t, "📈 開始記錄", b.reply(ctx, "record", ""))
	require.True(t, ctrl.recording)
	require.Equal(t, "⚠️ 已在記錄中", b.reply(ctx, "record", "x.txt"))
	require.Equal(t, "🛑 停止記錄", b.reply(ctx, "stop", ""))
}

func TestBotSnapshot(t *testing.T) {
	ctrl := &fakeController{}
	b, _ := newTestBot(ctrl, 0)

	require.Equal(t, "⚠️ 尚無畫面", b.reply(context.Background(), "snapshot", ""))
	ctrl.hasFrame = true
	require.Contains(t, b.reply(context.Background(), "snapshot", ""), "captures/defect.png")
}

func TestBotStatus(t *testing.T) {
	b, _ := newTestBot(&fakeController{hasFrame: true}, 0)
	out := b.reply(context.Background(), "status", "")
	require.Contains(t, out, "區塊數: 21")
	require.Contains(t, out, "皺褶%: 3.50")
	require.Contains(t, out, "未記錄")
}

func TestBotSetAndROI(t *testing.T) {
	b, _ := newTestBot(&fakeController{}, 0)
	ctx := context.Background()

	out := b.reply(ctx, "set", "edge 90")
	require.Contains(t, out, "edge=90")
	require.Equal(t, 90, b.panel.Snapshot().Detection.EdgeThreshold)

	b.reply(ctx, "set", "count abc")
	require.Equal(t, entity.DisabledTriggerCount, b.panel.Snapshot().Trigger.Count)

	require.True(t, strings.HasPrefix(b.reply(ctx, "set", "edge"), "用法"))
	require.True(t, strings.HasPrefix(b.reply(ctx, "set", "colour red"), "⚠️"))

	out = b.reply(ctx, "roi", "300 0 100 50")
	require.Equal(t, "✅ ROI 220,0 100x50", out)
	require.True(t, strings.HasPrefix(b.reply(ctx, "roi", "1 2 3"), "用法"))
}

func TestBotCamerasAndSave(t *testing.T) {
	ctrl := &fakeController{}
	b, _ := newTestBot(ctrl, 0)
	ctx := context.Background()

	require.Equal(t, "🎥 攝影機 0 / 3", b.reply(ctx, "cameras", "0 3"))
	require.Equal(t, [2]int{0, 3}, ctrl.cameras)
	require.Contains(t, b.reply(ctx, "cameras", "-1 3"), "失敗")

	require.Equal(t, "⚠️ 未設定參數檔", b.reply(ctx, "save", ""))
	saved := false
	b.saveParams = func() error { saved = true; return nil }
	require.Equal(t, "💾 參數已儲存", b.reply(ctx, "save", ""))
	require.True(t, saved)

	require.Equal(t, msgUnknownCommand, b.reply(ctx, "dance", ""))
}

func TestBotRejectsForeignChat(t *testing.T) {
	b, s := newTestBot(&fakeController{}, 42)
	b.handleMessage(context.Background(), &tgbotapi.Message{
		Text:     "/record",
		Chat:     &tgbotapi.Chat{ID: 7},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}},
	})

	require.Len(t, s.sent, 1)
	msg, ok := s.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, msgNotAllowed, msg.Text)
}

func TestBotWithoutChatIDAcceptsNothing(t *testing.T) {
	ctrl := &fakeController{}
	b, s := newTestBot(ctrl, 0)
	b.handleMessage(context.Background(), &tgbotapi.Message{
		Text:     "/record ../x",
		Chat:     &tgbotapi.Chat{ID: 7},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}},
	})

	require.False(t, ctrl.recording)
	require.Len(t, s.sent, 1)
	require.Equal(t, msgNotAllowed, s.sent[0].(tgbotapi.MessageConfig).Text)
}

func TestBotAcceptsConfiguredChat(t *testing.T) {
	ctrl := &fakeController{}
	b, _ := newTestBot(ctrl, 42)
	b.handleMessage(context.Background(), &tgbotapi.Message{
		Text:     "/record",
		Chat:     &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}},
	})
	require.True(t, ctrl.recording)
}

func TestNewBotRequiresChatID(t *testing.T) {
	_, err := NewBot("123:token", 0, &fakeController{}, nil, nil, nil)
	require.Error(t, err)
}

func TestBotNotify(t *testing.T) {
	b, s := newTestBot(&fakeController{}, 42)
	ctx := context.Background()

	require.NoError(t, b.Notify(ctx, "✅ 已儲存"))
	require.NoError(t, b.NotifyPhoto(ctx, "captures/jig.png", "📸 擷取"))
	require.Len(t, s.sent, 2)

	photo, ok := s.sent[1].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	require.Equal(t, int64(42), photo.ChatID)
	require.Equal(t, "📸 擷取", photo.Caption)

	silent, s2 := newTestBot(&fakeController{}, 0)
	require.NoError(t, silent.Notify(ctx, "x"))
	require.Empty(t, s2.sent)
}
