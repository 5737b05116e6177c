package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"vipgate/internal/database"
	"vipgate/internal/domain"
	"vipgate/internal/events"
	"vipgate/internal/metrics"
	"vipgate/internal/models"

	"github.com/rs/zerolog"
)

// ChannelService runs the free-access queue: users request access,
// wait out the configured delay and then receive an invite link.
type ChannelService struct {
	repo     domain.Repository
	telegram domain.TelegramService
	config   domain.ConfigService
	notifier domain.Notifier
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewChannelService(
	repo domain.Repository,
	telegram domain.TelegramService,
	config domain.ConfigService,
	notifier domain.Notifier,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *ChannelService {
	return &ChannelService{
		repo:     repo,
		telegram: telegram,
		config:   config,
		notifier: notifier,
		eventBus: eventBus,
		logger:   logger,
	}
}

// RequestAccess queues a free-channel request. A user with a pending
// request gets the remaining wait instead of a second slot.
func (s *ChannelService) RequestAccess(ctx context.Context, userID int64) (*models.AccessRequestResult, error) {
	waitTime, err := s.config.WaitTime(ctx)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.CreateRequest(ctx, userID)
	if err == nil {
		return &models.AccessRequestResult{Queued: true, RemainingWait: waitTime}, nil
	}
	if !errors.Is(err, database.ErrRequestPending) {
		return nil, err
	}

	pending, err := s.repo.GetPendingRequest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		// The pending request was processed between the insert and the
		// lookup. Treat it as a fresh queue attempt.
		if _, err := s.repo.CreateRequest(ctx, userID); err != nil {
			return nil, err
		}
		return &models.AccessRequestResult{Queued: true, RemainingWait: waitTime}, nil
	}

	remaining := time.Until(pending.RequestDate.Add(waitTime))
	if remaining < 0 {
		remaining = 0
	}
	return &models.AccessRequestResult{AlreadyPending: true, RemainingWait: remaining}, nil
}

// ApproveDueRequests grants access for every request whose wait time
// has elapsed. Requests are marked processed even when the invite
// fails so a broken user cannot wedge the queue.
func (s *ChannelService) ApproveDueRequests(ctx context.Context) (int, error) {
	waitTime, err := s.config.WaitTime(ctx)
	if err != nil {
		return 0, err
	}

	due, err := s.repo.GetDueRequests(ctx, waitTime)
	if err != nil {
		return 0, err
	}

	granted := 0
	for _, req := range due {
		if !s.grantAccess(ctx, req.UserID) {
			// Запрос остаётся в очереди до следующего прохода.
			continue
		}
		if err := s.repo.MarkRequestProcessed(ctx, req.ID, true); err != nil {
			s.logger.Error().Err(err).Int64("request_id", req.ID).Msg("failed to mark request processed")
			continue
		}
		granted++
		metrics.IncFreeRequestsApproved()
		s.publishGranted(req.UserID)
	}
	return granted, nil
}

func (s *ChannelService) grantAccess(ctx context.Context, userID int64) bool {
	chatID, err := s.freeChannelID(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("free channel is not configured")
		return false
	}

	expireAt := time.Now().Add(models.InviteLinkTTLMinutes * time.Minute)
	link, err := s.telegram.CreateInviteLink(chatID, 1, expireAt)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create free invite link")
		return false
	}

	if err := s.notifier.NotifyUser(ctx, userID, TemplateFreeGranted, link); err != nil {
		// The link was created; the user just could not be reached.
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("free invite link not delivered")
	}
	return true
}

// CleanupStaleRequests drops unprocessed requests older than the
// retention threshold.
func (s *ChannelService) CleanupStaleRequests(ctx context.Context) (int64, error) {
	return s.repo.CleanupOldRequests(ctx, models.RequestCleanupAgeDays*24*time.Hour)
}

func (s *ChannelService) Stats(ctx context.Context) (*models.ChannelStats, error) {
	active, err := s.repo.CountActiveVIPs(ctx)
	if err != nil {
		return nil, err
	}
	total, pending, err := s.repo.GetRequestStats(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ChannelStats{
		ActiveSubscribers: active,
		TotalRequests:     total,
		PendingRequests:   pending,
	}, nil
}

func (s *ChannelService) freeChannelID(ctx context.Context) (int64, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return 0, err
	}
	if cfg.FreeChannelID == "" {
		return 0, fmt.Errorf("free channel is not configured")
	}
	chatID, err := strconv.ParseInt(cfg.FreeChannelID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid free channel id %q: %w", cfg.FreeChannelID, err)
	}
	return chatID, nil
}

func (s *ChannelService) publishGranted(userID int64) {
	if s.eventBus == nil {
		return
	}
	payload := events.SubscriptionEventPayload{UserID: userID, Role: models.RoleFree, Status: models.SubStatusActive}
	if err := s.eventBus.PublishJSON(events.EventFreeAccessGranted, payload); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("publish event error")
	}
}
