package service

import (
	"context"
	"fmt"

	"vipgate/internal/domain"

	"github.com/rs/zerolog"
)

// Message templates sent to end users. User-facing copy is Spanish.
const (
	TemplateVIPExpired     = "vip_expired"
	TemplateVIPReminder    = "vip_reminder"
	TemplateVIPRevoked     = "vip_revoked"
	TemplateFreeGranted    = "free_granted"
	TemplateRankAchieved   = "rank_achieved"
	TemplateReferralCredit = "referral_credit"
)

var templates = map[string]string{
	TemplateVIPExpired:     "⏳ Tu suscripción VIP ha expirado. Usa un nuevo token para renovar tu acceso.",
	TemplateVIPReminder:    "⏰ Tu suscripción VIP expira en menos de 24 horas (%s). Renueva para no perder el acceso.",
	TemplateVIPRevoked:     "🚫 Tu acceso VIP ha sido revocado.",
	TemplateFreeGranted:    "✅ ¡Tu acceso al canal gratuito está listo!\n\nEnlace: %s",
	TemplateRankAchieved:   "🏆 ¡Felicidades! Has alcanzado el rango %s.",
	TemplateReferralCredit: "👥 ¡Tu invitado se ha unido! Has ganado %d puntos.",
}

// NotificationService delivers templated messages to users. Sends are
// best effort: a blocked bot must not break the calling flow.
type NotificationService struct {
	telegram domain.TelegramService
	adminIDs []int64
	logger   *zerolog.Logger
}

func NewNotificationService(telegram domain.TelegramService, adminIDs []int64, logger *zerolog.Logger) *NotificationService {
	return &NotificationService{
		telegram: telegram,
		adminIDs: adminIDs,
		logger:   logger,
	}
}

func (s *NotificationService) NotifyUser(_ context.Context, userID int64, template string, args ...interface{}) error {
	text, ok := templates[template]
	if !ok {
		return fmt.Errorf("unknown notification template %q", template)
	}
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}

	if _, err := s.telegram.SendMessage(userID, text); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Str("template", template).Msg("failed to notify user")
		return err
	}
	return nil
}

func (s *NotificationService) NotifyAdmins(_ context.Context, text string) error {
	var lastErr error
	for _, adminID := range s.adminIDs {
		if _, err := s.telegram.SendMessage(adminID, text); err != nil {
			s.logger.Warn().Err(err).Int64("admin_id", adminID).Msg("failed to notify admin")
			lastErr = err
		}
	}
	return lastErr
}
