package domain

import (
	"context"
	"time"

	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repository interface {
	GetBotConfig(ctx context.Context) (*models.BotConfig, error)
	CreateBotConfig(ctx context.Context) (*models.BotConfig, error)
	UpdateBotConfig(ctx context.Context, cfg *models.BotConfig) error

	CreateTier(ctx context.Context, tier *models.SubscriptionTier) error
	GetTierByID(ctx context.Context, id int64) (*models.SubscriptionTier, error)
	GetActiveTiers(ctx context.Context) ([]*models.SubscriptionTier, error)
	UpdateTierName(ctx context.Context, id int64, name string) error
	UpdateTierDuration(ctx context.Context, id int64, durationDays int) error
	UpdateTierPrice(ctx context.Context, id int64, priceUSD float64) error
	DeactivateTier(ctx context.Context, id int64) error

	CreateToken(ctx context.Context, token *models.InvitationToken) error
	GetUnusedToken(ctx context.Context, tokenStr string) (*models.InvitationToken, error)
	GetTokenByID(ctx context.Context, id int64) (*models.InvitationToken, error)
	ConsumeToken(ctx context.Context, tokenID, userID int64, duration time.Duration) (*models.UserSubscription, error)
	ExtendSubscription(ctx context.Context, userID int64, duration time.Duration) (*models.UserSubscription, error)

	GetSubscription(ctx context.Context, userID int64) (*models.UserSubscription, error)
	RevokeSubscription(ctx context.Context, userID int64) error
	ListActiveVIPs(ctx context.Context, offset, limit int) ([]*models.UserSubscription, error)
	CountActiveVIPs(ctx context.Context) (int64, error)
	GetExpiredActiveVIPs(ctx context.Context) ([]*models.UserSubscription, error)
	MarkSubscriptionExpired(ctx context.Context, id int64) error
	GetExpiringSoon(ctx context.Context, window time.Duration) ([]*models.UserSubscription, error)
	MarkReminderSent(ctx context.Context, id int64) error

	CreateRequest(ctx context.Context, userID int64) (*models.FreeChannelRequest, error)
	GetPendingRequest(ctx context.Context, userID int64) (*models.FreeChannelRequest, error)
	GetDueRequests(ctx context.Context, waitTime time.Duration) ([]*models.FreeChannelRequest, error)
	MarkRequestProcessed(ctx context.Context, id int64, approved bool) error
	CleanupOldRequests(ctx context.Context, age time.Duration) (int64, error)
	GetRequestStats(ctx context.Context) (total, pending int64, err error)

	GetProfile(ctx context.Context, userID int64) (*models.GamificationProfile, error)
	CreateProfile(ctx context.Context, userID int64, referredBy *int64) (*models.GamificationProfile, error)
	AddPoints(ctx context.Context, userID int64, points int64) (int64, error)
	SetLastDailyClaim(ctx context.Context, userID int64, at time.Time) error
	IncrementReferrals(ctx context.Context, userID int64) error
	UpdateProfileRank(ctx context.Context, userID int64, rankID int64) error
	GetBestRankForPoints(ctx context.Context, points int64) (*models.Rank, error)
	GetRankByID(ctx context.Context, id int64) (*models.Rank, error)
	GetAllRanks(ctx context.Context) ([]*models.Rank, error)
	UpdateRankRewards(ctx context.Context, rankID int64, vipDays int, packID *int64) error

	CreatePack(ctx context.Context, name string) (*models.RewardContentPack, error)
	GetPackByID(ctx context.Context, id int64) (*models.RewardContentPack, error)
	ListPacks(ctx context.Context) ([]*models.RewardContentPack, error)
	DeletePack(ctx context.Context, id int64) error
	AddFileToPack(ctx context.Context, packID int64, fileID, fileUniqueID, mediaType string) (*models.RewardContentFile, error)
	GetPackFiles(ctx context.Context, packID int64) ([]*models.RewardContentFile, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.WizardState, error)
	SetState(ctx context.Context, state *models.WizardState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.WizardState, error)
	SetUserState(ctx context.Context, userID int64, wizard, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	SendMediaGroup(chatID int64, media []interface{}, protect bool) ([]tgbotapi.Message, error)
	SendDocument(chatID int64, fileID string, protect bool) (tgbotapi.Message, error)
	CreateInviteLink(chatID int64, memberLimit int, expireAt time.Time) (string, error)
	BanChatMember(chatID, userID int64) error
	UnbanChatMember(chatID, userID int64) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type ConfigService interface {
	Get(ctx context.Context) (*models.BotConfig, error)
	Update(ctx context.Context, mutate func(cfg *models.BotConfig)) (*models.BotConfig, error)
	WaitTime(ctx context.Context) (time.Duration, error)
}

type SubscriptionService interface {
	IssueToken(ctx context.Context, adminID int64, tierID *int64, durationHours int) (*models.InvitationToken, string, error)
	RedeemToken(ctx context.Context, userID int64, tokenStr string) (*models.RedemptionResult, error)
	RevokeAccess(ctx context.Context, userID int64) error
	AddVIPDays(ctx context.Context, userID int64, days int) (*models.UserSubscription, error)
	ListActiveVIPs(ctx context.Context, offset, limit int) ([]*models.UserSubscription, int64, error)
}

type ChannelService interface {
	RequestAccess(ctx context.Context, userID int64) (*models.AccessRequestResult, error)
	ApproveDueRequests(ctx context.Context) (int, error)
	CleanupStaleRequests(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*models.ChannelStats, error)
}

type GamificationService interface {
	AddPoints(ctx context.Context, userID int64, points int64, reason string) error
	ClaimDaily(ctx context.Context, userID int64) (*models.DailyClaimResult, error)
	ProcessReferral(ctx context.Context, newUserID, referrerID int64) error
	ReferralLink(userID int64) string
	ProfileSummary(ctx context.Context, userID int64) (*models.ProfileSummary, error)
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, template string, args ...interface{}) error
	NotifyAdmins(ctx context.Context, text string) error
}
