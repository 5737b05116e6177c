package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vipgate/internal/database"
	"vipgate/internal/domain"
	"vipgate/internal/events"
	"vipgate/internal/metrics"
	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// GamificationService manages points, ranks and rank rewards.
type GamificationService struct {
	repo        domain.Repository
	telegram    domain.TelegramService
	notifier    domain.Notifier
	eventBus    domain.EventPublisher
	botUsername string
	logger      *zerolog.Logger
}

func NewGamificationService(
	repo domain.Repository,
	telegram domain.TelegramService,
	notifier domain.Notifier,
	eventBus domain.EventPublisher,
	botUsername string,
	logger *zerolog.Logger,
) *GamificationService {
	return &GamificationService{
		repo:        repo,
		telegram:    telegram,
		notifier:    notifier,
		eventBus:    eventBus,
		botUsername: botUsername,
		logger:      logger,
	}
}

// AddPoints credits points and promotes the user when the new balance
// crosses a rank threshold. Rank rewards are delivered on promotion.
func (s *GamificationService) AddPoints(ctx context.Context, userID int64, points int64, reason string) error {
	balance, err := s.repo.AddPoints(ctx, userID, points)
	if err != nil {
		return err
	}
	metrics.AddPoints(reason, points)

	_, err = s.checkRankUp(ctx, userID, balance)
	return err
}

// checkRankUp compares the stored rank with the best rank for the
// balance and promotes if they differ. Returns the new rank, if any.
func (s *GamificationService) checkRankUp(ctx context.Context, userID, balance int64) (*models.Rank, error) {
	best, err := s.repo.GetBestRankForPoints(ctx, balance)
	if err != nil {
		if errors.Is(err, database.ErrRankNotFound) {
			return nil, nil
		}
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	if profile.CurrentRankID != nil && *profile.CurrentRankID == best.ID {
		return nil, nil
	}

	if err := s.repo.UpdateProfileRank(ctx, userID, best.ID); err != nil {
		return nil, err
	}

	s.deliverRankRewards(ctx, userID, best)
	s.publishRankEvent(userID, best, balance)
	if err := s.notifier.NotifyUser(ctx, userID, TemplateRankAchieved, best.Name); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("rank notification not delivered")
	}
	s.logger.Info().Int64("user_id", userID).Str("rank", best.Name).Int64("points", balance).Msg("rank achieved")
	return best, nil
}

func (s *GamificationService) deliverRankRewards(ctx context.Context, userID int64, rank *models.Rank) {
	if rank.RewardVIPDays > 0 {
		if _, err := s.repo.ExtendSubscription(ctx, userID, time.Duration(rank.RewardVIPDays)*24*time.Hour); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to grant vip day reward")
		}
	}

	if rank.RewardContentPackID != nil {
		if err := s.sendContentPack(ctx, userID, *rank.RewardContentPackID); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Int64("pack_id", *rank.RewardContentPackID).Msg("failed to deliver content pack")
		}
	}
}

// sendContentPack delivers photos and videos as one album and
// documents one by one. Packs are VIP material: when VIP content
// protection is on, every send carries protect_content.
func (s *GamificationService) sendContentPack(ctx context.Context, userID, packID int64) error {
	files, err := s.repo.GetPackFiles(ctx, packID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	protect := false
	if cfg, err := s.repo.GetBotConfig(ctx); err == nil && cfg != nil {
		protect = cfg.VIPProtected
	}

	var album []interface{}
	for _, f := range files {
		switch f.MediaType {
		case models.MediaTypePhoto:
			album = append(album, tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(f.FileID)))
		case models.MediaTypeVideo:
			album = append(album, tgbotapi.NewInputMediaVideo(tgbotapi.FileID(f.FileID)))
		case models.MediaTypeDocument:
			if _, err := s.telegram.SendDocument(userID, f.FileID, protect); err != nil {
				s.logger.Warn().Err(err).Str("file_id", f.FileID).Msg("failed to send document")
			}
		}
	}

	if len(album) > 0 {
		if _, err := s.telegram.SendMediaGroup(userID, album, protect); err != nil {
			return err
		}
	}
	return nil
}

// ClaimDaily awards the daily points unless the user claimed within
// the last 24 hours.
func (s *GamificationService) ClaimDaily(ctx context.Context, userID int64) (*models.DailyClaimResult, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile, err = s.repo.CreateProfile(ctx, userID, nil)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if profile.LastDailyClaim != nil {
		elapsed := now.Sub(*profile.LastDailyClaim)
		if elapsed < 24*time.Hour {
			return &models.DailyClaimResult{
				Claimed: false,
				Balance: profile.Points,
				RetryIn: 24*time.Hour - elapsed,
			}, nil
		}
	}

	balance, err := s.repo.AddPoints(ctx, userID, models.DailyRewardPoints)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetLastDailyClaim(ctx, userID, now); err != nil {
		return nil, err
	}
	metrics.AddPoints("daily", models.DailyRewardPoints)

	newRank, err := s.checkRankUp(ctx, userID, balance)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("rank check failed after daily claim")
	}

	return &models.DailyClaimResult{
		Claimed: true,
		Points:  models.DailyRewardPoints,
		Balance: balance,
		NewRank: newRank,
	}, nil
}

// FormatRetryIn renders a cooldown as HH:MM:SS for user messages.
func FormatRetryIn(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// ProcessReferral credits a referral: the referrer gets points and a
// counter bump, the new user gets a signup bonus. The new user must
// not already have a profile and cannot refer themselves.
func (s *GamificationService) ProcessReferral(ctx context.Context, newUserID, referrerID int64) error {
	if newUserID == referrerID {
		return ErrSelfReferral
	}

	referrer, err := s.repo.GetProfile(ctx, referrerID)
	if err != nil {
		return err
	}
	if referrer == nil {
		return ErrReferrerNotFound
	}

	if _, err := s.repo.CreateProfile(ctx, newUserID, &referrerID); err != nil {
		return err
	}

	if err := s.repo.IncrementReferrals(ctx, referrerID); err != nil {
		return err
	}
	if err := s.AddPoints(ctx, referrerID, models.ReferralReferrerPoints, "referral"); err != nil {
		return err
	}
	if err := s.AddPoints(ctx, newUserID, models.ReferralNewUserPoints, "referral_signup"); err != nil {
		return err
	}

	if err := s.notifier.NotifyUser(ctx, referrerID, TemplateReferralCredit, models.ReferralReferrerPoints); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", referrerID).Msg("referral notification not delivered")
	}
	s.logger.Info().Int64("referrer_id", referrerID).Int64("new_user_id", newUserID).Msg("referral processed")
	return nil
}

// ReferralLink builds the user's personal invite deep link.
func (s *GamificationService) ReferralLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=ref_%d", s.botUsername, userID)
}

// ProfileSummary assembles the user-facing profile view.
func (s *GamificationService) ProfileSummary(ctx context.Context, userID int64) (*models.ProfileSummary, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile, err = s.repo.CreateProfile(ctx, userID, nil)
		if err != nil {
			return nil, err
		}
	}

	summary := &models.ProfileSummary{
		Points:         profile.Points,
		ReferralsCount: profile.ReferralsCount,
	}

	if profile.CurrentRankID != nil {
		rank, err := s.repo.GetRankByID(ctx, *profile.CurrentRankID)
		if err == nil {
			summary.RankName = rank.Name
		}
	}

	ranks, err := s.repo.GetAllRanks(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range ranks {
		if r.MinPoints > profile.Points {
			summary.NextRankName = r.Name
			summary.PointsToNext = r.MinPoints - profile.Points
			break
		}
	}
	return summary, nil
}

// HandleReactionEvent credits points for a channel reaction. Wired to
// the event bus at startup.
func (s *GamificationService) HandleReactionEvent(event *events.Event) error {
	var payload events.ReactionEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode reaction payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.AddPoints(ctx, payload.UserID, models.PointsPerReaction, "reaction")
}

func (s *GamificationService) publishRankEvent(userID int64, rank *models.Rank, points int64) {
	if s.eventBus == nil {
		return
	}
	payload := events.RankEventPayload{
		UserID:   userID,
		RankID:   rank.ID,
		RankName: rank.Name,
		Points:   points,
	}
	if err := s.eventBus.PublishJSON(events.EventRankAchieved, payload); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("publish event error")
	}
}
