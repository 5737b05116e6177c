package worker

import (
	"context"
	"io"
	"testing"
	"time"

	"vipgate/internal/database"
	"vipgate/internal/models"
	"vipgate/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChannels struct {
	mock.Mock
}

func (m *mockChannels) RequestAccess(ctx context.Context, userID int64) (*models.AccessRequestResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccessRequestResult), args.Error(1)
}
func (m *mockChannels) ApproveDueRequests(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *mockChannels) CleanupStaleRequests(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockChannels) Stats(ctx context.Context) (*models.ChannelStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelStats), args.Error(1)
}

type mockTelegram struct {
	mock.Mock
}

func (m *mockTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}
func (m *mockTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}
func (m *mockTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	args := m.Called(chatID, text)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}
func (m *mockTelegram) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	args := m.Called(chatID, text)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}
func (m *mockTelegram) SendWithInlineKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, text, kb)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}
func (m *mockTelegram) EditMessage(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, messageID, text, kb)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}
func (m *mockTelegram) AnswerCallback(callbackID, text string) error {
	return m.Called(callbackID, text).Error(0)
}
func (m *mockTelegram) SendMediaGroup(chatID int64, media []interface{}, protect bool) ([]tgbotapi.Message, error) {
	args := m.Called(chatID, media, protect)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tgbotapi.Message), args.Error(1)
}
func (m *mockTelegram) SendDocument(chatID int64, fileID string, protect bool) (tgbotapi.Message, error) {
	args := m.Called(chatID, fileID, protect)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}
func (m *mockTelegram) CreateInviteLink(chatID int64, memberLimit int, expireAt time.Time) (string, error) {
	args := m.Called(chatID, memberLimit, expireAt)
	return args.String(0), args.Error(1)
}
func (m *mockTelegram) BanChatMember(chatID, userID int64) error {
	return m.Called(chatID, userID).Error(0)
}
func (m *mockTelegram) UnbanChatMember(chatID, userID int64) error {
	return m.Called(chatID, userID).Error(0)
}
func (m *mockTelegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.UpdatesChannel)
}
func (m *mockTelegram) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}
func (m *mockTelegram) StopReceivingUpdates() {
	m.Called()
}

type mockConfigService struct {
	mock.Mock
}

func (m *mockConfigService) Get(ctx context.Context) (*models.BotConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BotConfig), args.Error(1)
}
func (m *mockConfigService) Update(ctx context.Context, mutate func(cfg *models.BotConfig)) (*models.BotConfig, error) {
	args := m.Called(ctx, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BotConfig), args.Error(1)
}
func (m *mockConfigService) WaitTime(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyUser(ctx context.Context, userID int64, template string, args ...interface{}) error {
	callArgs := m.Called(ctx, userID, template, args)
	return callArgs.Error(0)
}
func (m *mockNotifier) NotifyAdmins(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func newTestReconciler(t *testing.T) (*Reconciler, *database.DB, *mockChannels, *mockTelegram, *mockConfigService, *mockNotifier) {
	db, err := database.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	channels := new(mockChannels)
	tg := new(mockTelegram)
	cfg := new(mockConfigService)
	notifier := new(mockNotifier)
	logger := zerolog.New(io.Discard)

	r := NewReconciler(db, channels, tg, cfg, notifier, nil, RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond}, &logger)
	return r, db, channels, tg, cfg, notifier
}

func TestRunMaintenanceExpiresLapsedVIPs(t *testing.T) {
	r, db, channels, tg, cfg, notifier := newTestReconciler(t)
	ctx := context.Background()

	// One lapsed VIP, one still active.
	past := time.Now().UTC().Add(-time.Hour)
	_, err := db.ExecContext(ctx,
		`INSERT INTO user_subscriptions (user_id, role, join_date, expiry_date, status)
         VALUES (?, 'vip', ?, ?, 'active')`, int64(10), past.Add(-24*time.Hour), past)
	require.NoError(t, err)
	_, err = db.ExtendSubscription(ctx, 11, 72*time.Hour)
	require.NoError(t, err)

	cfg.On("Get", mock.Anything).Return(&models.BotConfig{VIPChannelID: "-100555"}, nil)
	tg.On("BanChatMember", int64(-100555), int64(10)).Return(nil).Once()
	tg.On("UnbanChatMember", int64(-100555), int64(10)).Return(nil).Once()
	notifier.On("NotifyUser", mock.Anything, int64(10), service.TemplateVIPExpired, mock.Anything).Return(nil).Once()
	channels.On("CleanupStaleRequests", mock.Anything).Return(int64(0), nil).Once()

	r.RunMaintenance(ctx)

	sub, err := db.GetSubscription(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, models.SubStatusExpired, sub.Status)
	assert.Equal(t, models.RoleFree, sub.Role)

	active, err := db.GetSubscription(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, models.SubStatusActive, active.Status)

	tg.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRunMaintenanceSendsReminderOnce(t *testing.T) {
	r, db, channels, _, cfg, notifier := newTestReconciler(t)
	ctx := context.Background()

	// Expires in 12 hours: reminder due.
	_, err := db.ExtendSubscription(ctx, 20, 12*time.Hour)
	require.NoError(t, err)

	cfg.On("Get", mock.Anything).Return(&models.BotConfig{}, nil)
	notifier.On("NotifyUser", mock.Anything, int64(20), service.TemplateVIPReminder, mock.Anything).Return(nil).Once()
	channels.On("CleanupStaleRequests", mock.Anything).Return(int64(0), nil)

	r.RunMaintenance(ctx)
	// Second sweep must not repeat the reminder.
	r.RunMaintenance(ctx)

	notifier.AssertNumberOfCalls(t, "NotifyUser", 1)
}

func TestReconcilerStopsOnContextCancel(t *testing.T) {
	r, _, channels, _, cfg, _ := newTestReconciler(t)
	r.promotionInterval = 10 * time.Millisecond
	r.maintenanceInterval = time.Hour

	cfg.On("Get", mock.Anything).Return(&models.BotConfig{}, nil)
	channels.On("ApproveDueRequests", mock.Anything).Return(0, nil)
	channels.On("CleanupStaleRequests", mock.Anything).Return(int64(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 10*time.Second, p.NextDelay(10))
}
