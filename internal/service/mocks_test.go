package service

import (
	"context"
	"time"

	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetBotConfig(ctx context.Context) (*models.BotConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BotConfig), args.Error(1)
}
func (m *mockRepo) CreateBotConfig(ctx context.Context) (*models.BotConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BotConfig), args.Error(1)
}
func (m *mockRepo) UpdateBotConfig(ctx context.Context, cfg *models.BotConfig) error {
	return m.Called(ctx, cfg).Error(0)
}
func (m *mockRepo) CreateTier(ctx context.Context, tier *models.SubscriptionTier) error {
	return m.Called(ctx, tier).Error(0)
}
func (m *mockRepo) GetTierByID(ctx context.Context, id int64) (*models.SubscriptionTier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionTier), args.Error(1)
}
func (m *mockRepo) GetActiveTiers(ctx context.Context) ([]*models.SubscriptionTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionTier), args.Error(1)
}
func (m *mockRepo) UpdateTierName(ctx context.Context, id int64, name string) error {
	return m.Called(ctx, id, name).Error(0)
}
func (m *mockRepo) UpdateTierDuration(ctx context.Context, id int64, d int) error {
	return m.Called(ctx, id, d).Error(0)
}
func (m *mockRepo) UpdateTierPrice(ctx context.Context, id int64, p float64) error {
	return m.Called(ctx, id, p).Error(0)
}
func (m *mockRepo) DeactivateTier(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateToken(ctx context.Context, token *models.InvitationToken) error {
	return m.Called(ctx, token).Error(0)
}
func (m *mockRepo) GetUnusedToken(ctx context.Context, tokenStr string) (*models.InvitationToken, error) {
	args := m.Called(ctx, tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvitationToken), args.Error(1)
}
func (m *mockRepo) GetTokenByID(ctx context.Context, id int64) (*models.InvitationToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvitationToken), args.Error(1)
}
func (m *mockRepo) ConsumeToken(ctx context.Context, tokenID, userID int64, d time.Duration) (*models.UserSubscription, error) {
	args := m.Called(ctx, tokenID, userID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}
func (m *mockRepo) ExtendSubscription(ctx context.Context, userID int64, d time.Duration) (*models.UserSubscription, error) {
	args := m.Called(ctx, userID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}
func (m *mockRepo) GetSubscription(ctx context.Context, userID int64) (*models.UserSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}
func (m *mockRepo) RevokeSubscription(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockRepo) ListActiveVIPs(ctx context.Context, offset, limit int) ([]*models.UserSubscription, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserSubscription), args.Error(1)
}
func (m *mockRepo) CountActiveVIPs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) GetExpiredActiveVIPs(ctx context.Context) ([]*models.UserSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserSubscription), args.Error(1)
}
func (m *mockRepo) MarkSubscriptionExpired(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetExpiringSoon(ctx context.Context, w time.Duration) ([]*models.UserSubscription, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserSubscription), args.Error(1)
}
func (m *mockRepo) MarkReminderSent(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateRequest(ctx context.Context, userID int64) (*models.FreeChannelRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FreeChannelRequest), args.Error(1)
}
func (m *mockRepo) GetPendingRequest(ctx context.Context, userID int64) (*models.FreeChannelRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FreeChannelRequest), args.Error(1)
}
func (m *mockRepo) GetDueRequests(ctx context.Context, w time.Duration) ([]*models.FreeChannelRequest, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FreeChannelRequest), args.Error(1)
}
func (m *mockRepo) MarkRequestProcessed(ctx context.Context, id int64, approved bool) error {
	return m.Called(ctx, id, approved).Error(0)
}
func (m *mockRepo) CleanupOldRequests(ctx context.Context, age time.Duration) (int64, error) {
	args := m.Called(ctx, age)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) GetRequestStats(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}
func (m *mockRepo) GetProfile(ctx context.Context, userID int64) (*models.GamificationProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GamificationProfile), args.Error(1)
}
func (m *mockRepo) CreateProfile(ctx context.Context, userID int64, referredBy *int64) (*models.GamificationProfile, error) {
	args := m.Called(ctx, userID, referredBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GamificationProfile), args.Error(1)
}
func (m *mockRepo) AddPoints(ctx context.Context, userID, points int64) (int64, error) {
	args := m.Called(ctx, userID, points)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) SetLastDailyClaim(ctx context.Context, userID int64, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}
func (m *mockRepo) IncrementReferrals(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockRepo) UpdateProfileRank(ctx context.Context, userID, rankID int64) error {
	return m.Called(ctx, userID, rankID).Error(0)
}
func (m *mockRepo) GetBestRankForPoints(ctx context.Context, points int64) (*models.Rank, error) {
	args := m.Called(ctx, points)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rank), args.Error(1)
}
func (m *mockRepo) GetRankByID(ctx context.Context, id int64) (*models.Rank, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rank), args.Error(1)
}
func (m *mockRepo) GetAllRanks(ctx context.Context) ([]*models.Rank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Rank), args.Error(1)
}
func (m *mockRepo) UpdateRankRewards(ctx context.Context, rankID int64, vipDays int, packID *int64) error {
	return m.Called(ctx, rankID, vipDays, packID).Error(0)
}
func (m *mockRepo) CreatePack(ctx context.Context, name string) (*models.RewardContentPack, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardContentPack), args.Error(1)
}
func (m *mockRepo) GetPackByID(ctx context.Context, id int64) (*models.RewardContentPack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardContentPack), args.Error(1)
}
func (m *mockRepo) ListPacks(ctx context.Context) ([]*models.RewardContentPack, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RewardContentPack), args.Error(1)
}
func (m *mockRepo) DeletePack(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) AddFileToPack(ctx context.Context, packID int64, fileID, fileUniqueID, mediaType string) (*models.RewardContentFile, error) {
	args := m.Called(ctx, packID, fileID, fileUniqueID, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardContentFile), args.Error(1)
}
func (m *mockRepo) GetPackFiles(ctx context.Context, packID int64) ([]*models.RewardContentFile, error) {
	args := m.Called(ctx, packID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RewardContentFile), args.Error(1)
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
