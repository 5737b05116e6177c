package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vipgate/internal/domain"
	"vipgate/internal/events"
	"vipgate/internal/metrics"
	"vipgate/internal/service"

	"github.com/rs/zerolog"
)

const (
	defaultPromotionInterval   = time.Minute
	defaultMaintenanceInterval = time.Hour
	reminderWindow             = 24 * time.Hour
)

// Reconciler drives the periodic state transitions: free queue
// promotion, subscription expiry, expiry reminders and request
// cleanup. One failing item never stops the sweep.
type Reconciler struct {
	repo     domain.Repository
	channels domain.ChannelService
	telegram domain.TelegramService
	config   domain.ConfigService
	notifier domain.Notifier
	eventBus domain.EventPublisher
	retry    RetryPolicy
	logger   *zerolog.Logger

	promotionInterval   time.Duration
	maintenanceInterval time.Duration
}

func NewReconciler(
	repo domain.Repository,
	channels domain.ChannelService,
	telegram domain.TelegramService,
	config domain.ConfigService,
	notifier domain.Notifier,
	eventBus domain.EventPublisher,
	retry RetryPolicy,
	logger *zerolog.Logger,
) *Reconciler {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = time.Second
	}
	return &Reconciler{
		repo:                repo,
		channels:            channels,
		telegram:            telegram,
		config:              config,
		notifier:            notifier,
		eventBus:            eventBus,
		retry:               retry,
		logger:              logger,
		promotionInterval:   defaultPromotionInterval,
		maintenanceInterval: defaultMaintenanceInterval,
	}
}

// Start launches both loops and blocks until ctx is done.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info().
		Dur("promotion_interval", r.promotionInterval).
		Dur("maintenance_interval", r.maintenanceInterval).
		Msg("reconciler started")
	defer r.logger.Info().Msg("reconciler stopped")

	go r.promotionLoop(ctx)
	r.maintenanceLoop(ctx)
}

func (r *Reconciler) promotionLoop(ctx context.Context) {
	ticker := time.NewTicker(r.promotionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			granted, err := r.channels.ApproveDueRequests(ctx)
			if err != nil {
				r.logger.Error().Err(err).Msg("free queue sweep failed")
				continue
			}
			if granted > 0 {
				r.logger.Info().Int("granted", granted).Msg("free access granted")
			}
		}
	}
}

func (r *Reconciler) maintenanceLoop(ctx context.Context) {
	ticker := time.NewTicker(r.maintenanceInterval)
	defer ticker.Stop()

	// Run one sweep at startup so a long-stopped bot catches up
	// immediately.
	r.RunMaintenance(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunMaintenance(ctx)
		}
	}
}

// RunMaintenance performs one expiry, reminder and cleanup sweep.
func (r *Reconciler) RunMaintenance(ctx context.Context) {
	if err := r.processExpired(ctx); err != nil {
		r.logger.Error().Err(err).Msg("expiry sweep failed")
	}
	if err := r.sendReminders(ctx); err != nil {
		r.logger.Error().Err(err).Msg("reminder sweep failed")
	}
	if removed, err := r.channels.CleanupStaleRequests(ctx); err != nil {
		r.logger.Error().Err(err).Msg("request cleanup failed")
	} else if removed > 0 {
		r.logger.Info().Int64("removed", removed).Msg("stale requests cleaned up")
	}
}

// processExpired downgrades every lapsed VIP and removes them from the
// channel.
func (r *Reconciler) processExpired(ctx context.Context) error {
	expired, err := r.repo.GetExpiredActiveVIPs(ctx)
	if err != nil {
		return err
	}

	for _, sub := range expired {
		if err := r.repo.MarkSubscriptionExpired(ctx, sub.ID); err != nil {
			r.logger.Error().Err(err).Int64("user_id", sub.UserID).Msg("failed to mark subscription expired")
			continue
		}
		metrics.IncSubscriptionsExpired()

		r.kickWithRetry(ctx, sub.UserID)

		if err := r.notifier.NotifyUser(ctx, sub.UserID, service.TemplateVIPExpired); err != nil {
			r.logger.Warn().Err(err).Int64("user_id", sub.UserID).Msg("expiry notice not delivered")
		}

		r.publishExpired(sub.UserID)
		r.logger.Info().Int64("user_id", sub.UserID).Msg("subscription expired")
	}
	return nil
}

// sendReminders warns users expiring within 24 hours, once.
func (r *Reconciler) sendReminders(ctx context.Context) error {
	soon, err := r.repo.GetExpiringSoon(ctx, reminderWindow)
	if err != nil {
		return err
	}

	for _, sub := range soon {
		expiry := ""
		if sub.ExpiryDate != nil {
			expiry = sub.ExpiryDate.Format("02.01.2006 15:04")
		}
		if err := r.notifier.NotifyUser(ctx, sub.UserID, service.TemplateVIPReminder, expiry); err != nil {
			// Leave the flag unset so the next sweep retries.
			r.logger.Warn().Err(err).Int64("user_id", sub.UserID).Msg("reminder not delivered")
			continue
		}
		if err := r.repo.MarkReminderSent(ctx, sub.ID); err != nil {
			r.logger.Error().Err(err).Int64("user_id", sub.UserID).Msg("failed to mark reminder sent")
		}
	}
	return nil
}

// kickWithRetry bans and unbans the user from the VIP channel with
// backoff. Transient API errors are common during bulk expiry.
func (r *Reconciler) kickWithRetry(ctx context.Context, userID int64) {
	chatID, err := r.vipChannelID(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("skipping channel kick")
		return
	}

	for attempt := 1; attempt <= r.retry.MaxRetries; attempt++ {
		if err = r.telegram.BanChatMember(chatID, userID); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retry.NextDelay(attempt)):
		}
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to ban expired user")
		return
	}

	if err := r.telegram.UnbanChatMember(chatID, userID); err != nil {
		r.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to unban expired user")
	}
}

func (r *Reconciler) vipChannelID(ctx context.Context) (int64, error) {
	cfg, err := r.config.Get(ctx)
	if err != nil {
		return 0, err
	}
	if cfg.VIPChannelID == "" {
		return 0, fmt.Errorf("vip channel is not configured")
	}
	return strconv.ParseInt(cfg.VIPChannelID, 10, 64)
}

func (r *Reconciler) publishExpired(userID int64) {
	if r.eventBus == nil {
		return
	}
	payload := events.SubscriptionEventPayload{UserID: userID, Role: "free", Status: "expired"}
	if err := r.eventBus.PublishJSON(events.EventSubscriptionExpired, payload); err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("publish event error")
	}
}
