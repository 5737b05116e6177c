package models

const (
	RoleFree  = "free"
	RoleVIP   = "vip"
	RoleAdmin = "admin"
)

const (
	SubStatusActive  = "active"
	SubStatusExpired = "expired"
	SubStatusRevoked = "revoked"
)

const (
	ChannelVIP  = "vip"
	ChannelFree = "free"
)

const (
	MediaTypePhoto    = "photo"
	MediaTypeVideo    = "video"
	MediaTypeDocument = "document"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// DefaultRedisTTL время жизни состояния мастера в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// DailyRewardPoints очки за ежедневный бонус
	DailyRewardPoints = 50

	// ReferralReferrerPoints очки рефереру за приглашение
	ReferralReferrerPoints = 100

	// ReferralNewUserPoints очки приглашённому пользователю
	ReferralNewUserPoints = 50

	// PointsPerReaction очки за реакцию в канале
	PointsPerReaction = 10

	// DefaultPaginationSize размер пагинации по умолчанию
	DefaultPaginationSize = 8

	// DefaultWaitTimeMinutes время ожидания free-канала по умолчанию
	DefaultWaitTimeMinutes = 60

	// RequestCleanupAgeDays возраст необработанных заявок для удаления
	RequestCleanupAgeDays = 30

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// InviteLinkTTLMinutes срок действия одноразовой инвайт-ссылки
	InviteLinkTTLMinutes = 60
)
