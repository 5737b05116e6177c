package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vipgate/internal/database"
	"vipgate/internal/domain"
	"vipgate/internal/events"
	"vipgate/internal/metrics"
	"vipgate/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SubscriptionService struct {
	repo        domain.Repository
	telegram    domain.TelegramService
	config      domain.ConfigService
	notifier    domain.Notifier
	eventBus    domain.EventPublisher
	botUsername string
	logger      *zerolog.Logger
}

func NewSubscriptionService(
	repo domain.Repository,
	telegram domain.TelegramService,
	config domain.ConfigService,
	notifier domain.Notifier,
	eventBus domain.EventPublisher,
	botUsername string,
	logger *zerolog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		repo:        repo,
		telegram:    telegram,
		config:      config,
		notifier:    notifier,
		eventBus:    eventBus,
		botUsername: botUsername,
		logger:      logger,
	}
}

// IssueToken creates a single-use invitation token and returns it with
// its deep link. Either tierID or durationHours must be set.
func (s *SubscriptionService) IssueToken(ctx context.Context, adminID int64, tierID *int64, durationHours int) (*models.InvitationToken, string, error) {
	if tierID != nil {
		tier, err := s.repo.GetTierByID(ctx, *tierID)
		if err != nil {
			return nil, "", err
		}
		if !tier.IsActive {
			return nil, "", database.ErrTierInactive
		}
	} else if durationHours <= 0 {
		return nil, "", fmt.Errorf("token needs a tier or a positive duration")
	}

	token := &models.InvitationToken{
		Token:         uuid.NewString(),
		GeneratedBy:   adminID,
		TierID:        tierID,
		DurationHours: durationHours,
	}
	if err := s.repo.CreateToken(ctx, token); err != nil {
		return nil, "", err
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, token.Token)
	s.logger.Info().Int64("admin_id", adminID).Int64("token_id", token.ID).Msg("token issued")
	return token, link, nil
}

// RedeemToken resolves a token string, consumes it exactly once and
// extends the user's subscription. Legacy duration tokens are rejected
// past created_at + duration_hours.
func (s *SubscriptionService) RedeemToken(ctx context.Context, userID int64, tokenStr string) (*models.RedemptionResult, error) {
	token, err := s.repo.GetUnusedToken(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	var duration time.Duration
	var tierName string
	grantedDays := 0

	switch {
	case token.TierID != nil:
		tier, err := s.repo.GetTierByID(ctx, *token.TierID)
		if err != nil {
			return nil, err
		}
		duration = time.Duration(tier.DurationDays) * 24 * time.Hour
		tierName = tier.Name
		grantedDays = tier.DurationDays
	case token.DurationHours > 0:
		expiresAt := token.CreatedAt.Add(time.Duration(token.DurationHours) * time.Hour)
		if time.Now().UTC().After(expiresAt) {
			return nil, database.ErrTokenExpired
		}
		duration = time.Duration(token.DurationHours) * time.Hour
		grantedDays = token.DurationHours / 24
	default:
		return nil, database.ErrTokenNotFound
	}

	sub, err := s.repo.ConsumeToken(ctx, token.ID, userID, duration)
	if err != nil {
		return nil, err
	}

	result := &models.RedemptionResult{
		Subscription: sub,
		TierName:     tierName,
		GrantedDays:  grantedDays,
	}

	if link, err := s.vipInviteLink(ctx); err == nil {
		result.InviteLink = link
	} else {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("could not create vip invite link")
	}

	metrics.IncTokensRedeemed()
	s.publishSubscriptionEvent(events.EventTokenRedeemed, sub, tierName)
	s.logger.Info().Int64("user_id", userID).Int64("token_id", token.ID).Msg("token redeemed")
	return result, nil
}

// RevokeAccess removes a user's VIP subscription and kicks them from
// the VIP channel. The channel kick is best effort.
func (s *SubscriptionService) RevokeAccess(ctx context.Context, userID int64) error {
	if err := s.repo.RevokeSubscription(ctx, userID); err != nil {
		return err
	}

	s.kickFromVIPChannel(ctx, userID)

	if s.notifier != nil {
		if err := s.notifier.NotifyUser(ctx, userID, TemplateVIPRevoked); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("revoke notice not delivered")
		}
	}

	sub, err := s.repo.GetSubscription(ctx, userID)
	if err == nil && sub != nil {
		s.publishSubscriptionEvent(events.EventSubscriptionRevoked, sub, "")
	}
	s.logger.Info().Int64("user_id", userID).Msg("vip access revoked")
	return nil
}

// AddVIPDays extends the user's subscription by whole days, stacking
// on the current expiry when it is still in the future.
func (s *SubscriptionService) AddVIPDays(ctx context.Context, userID int64, days int) (*models.UserSubscription, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive")
	}
	return s.repo.ExtendSubscription(ctx, userID, time.Duration(days)*24*time.Hour)
}

func (s *SubscriptionService) ListActiveVIPs(ctx context.Context, offset, limit int) ([]*models.UserSubscription, int64, error) {
	subs, err := s.repo.ListActiveVIPs(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountActiveVIPs(ctx)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// vipInviteLink creates a fresh single-use link to the VIP channel.
func (s *SubscriptionService) vipInviteLink(ctx context.Context) (string, error) {
	chatID, err := s.vipChannelID(ctx)
	if err != nil {
		return "", err
	}
	expireAt := time.Now().Add(models.InviteLinkTTLMinutes * time.Minute)
	return s.telegram.CreateInviteLink(chatID, 1, expireAt)
}

func (s *SubscriptionService) vipChannelID(ctx context.Context) (int64, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return 0, err
	}
	if cfg.VIPChannelID == "" {
		return 0, fmt.Errorf("vip channel is not configured")
	}
	chatID, err := strconv.ParseInt(cfg.VIPChannelID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid vip channel id %q: %w", cfg.VIPChannelID, err)
	}
	return chatID, nil
}

func (s *SubscriptionService) kickFromVIPChannel(ctx context.Context, userID int64) {
	chatID, err := s.vipChannelID(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("skipping channel kick")
		return
	}

	if err := s.telegram.BanChatMember(chatID, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to ban user from vip channel")
		return
	}
	// Unban right away so the user can rejoin later with a new invite.
	if err := s.telegram.UnbanChatMember(chatID, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to unban user from vip channel")
	}
}

func (s *SubscriptionService) publishSubscriptionEvent(eventType string, sub *models.UserSubscription, tierName string) {
	if s.eventBus == nil {
		return
	}

	payload := events.SubscriptionEventPayload{
		UserID:     sub.UserID,
		Role:       sub.Role,
		Status:     sub.Status,
		ExpiryDate: sub.ExpiryDate,
		TierName:   tierName,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("user_id", sub.UserID).Msg("publish event error")
	}
}
