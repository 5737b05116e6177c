package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vipgate/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
		if update.Message.IsCommand() {
			b.metrics.CommandsProcessed.WithLabelValues(update.Message.Command()).Inc()
		}
	}

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	// Активный мастер перехватывает любой ввод администратора.
	if b.isAdmin(userID) {
		if state := b.getUserState(ctx, userID); state != nil {
			if b.handleWizardInput(ctx, update, state) {
				return
			}
		}
	}

	if update.Message.IsCommand() {
		b.handleCommand(ctx, update)
		return
	}

	if looksLikeToken(text) {
		b.redeemToken(ctx, chatID, userID, strings.TrimSpace(text))
		return
	}

	// Cualquier otro texto cuenta como solicitud de acceso al canal
	// gratuito, igual que /free.
	if text != "" {
		b.handleFree(ctx, chatID, userID)
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	switch update.Message.Command() {
	case "start":
		b.handleStart(ctx, update)
	case "help":
		b.sendHelp(chatID, b.isAdmin(userID))
	case "daily":
		b.handleDaily(ctx, chatID, userID)
	case "invite":
		b.handleInvite(ctx, chatID, userID)
	case "free":
		b.handleFree(ctx, chatID, userID)
	case "admin":
		if b.isAdmin(userID) {
			b.sendAdminMenu(ctx, chatID)
		}
	default:
		b.sendHelp(chatID, b.isAdmin(userID))
	}
}

// handleStart routes the /start deep-link payload: an invitation token
// redeems VIP access, ref_<id> credits a referral, anything else shows
// the welcome text.
func (b *Bot) handleStart(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	payload := strings.TrimSpace(update.Message.CommandArguments())

	switch {
	case looksLikeToken(payload):
		b.redeemToken(ctx, chatID, userID, payload)
		return

	case strings.HasPrefix(payload, "ref_"):
		referrerID, err := strconv.ParseInt(strings.TrimPrefix(payload, "ref_"), 10, 64)
		if err == nil {
			if err := b.gamification.ProcessReferral(ctx, userID, referrerID); err != nil {
				b.logger.Debug().Err(err).Int64("user_id", userID).Msg("Referral rejected")
			} else {
				b.sendMessage(chatID, "🎉 ¡Bienvenido! Has recibido puntos de regalo por unirte con un enlace de invitación.")
			}
		}
	}

	b.sendWelcome(ctx, chatID, userID)
}

func (b *Bot) sendWelcome(_ context.Context, chatID, userID int64) {
	text := "👋 ¡Hola! Este bot gestiona el acceso a nuestros canales.\n\n" +
		"• Si tienes un token de invitación, envíamelo para activar tu acceso VIP.\n" +
		"• Usa /free para solicitar acceso al canal gratuito.\n" +
		"• Usa /daily para reclamar tus puntos diarios.\n" +
		"• Usa /invite para conseguir tu enlace de invitación.\n" +
		"• Usa /help para ver todos los comandos."
	if b.isAdmin(userID) {
		text += "\n\n🔧 Eres administrador: usa /admin para abrir el menú."
	}
	b.sendMessage(chatID, text)
}

func (b *Bot) sendHelp(chatID int64, admin bool) {
	text := "Comandos disponibles:\n" +
		"/start — empezar, o canjear un token desde un enlace\n" +
		"/free — solicitar acceso al canal gratuito\n" +
		"/daily — reclamar puntos diarios\n" +
		"/invite — tu enlace de invitación y tu perfil de puntos\n" +
		"/help — esta ayuda\n\n" +
		"También puedes enviarme un token de invitación directamente."
	if admin {
		text += "\n/admin — menú de administración"
	}
	b.sendMessage(chatID, text)
}

func (b *Bot) redeemToken(ctx context.Context, chatID, userID int64, token string) {
	result, err := b.subscriptions.RedeemToken(ctx, userID, token)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	var sb strings.Builder
	sb.WriteString("🎉 ¡Token canjeado!\n\n")
	if result.TierName != "" {
		sb.WriteString(fmt.Sprintf("Plan: *%s*\n", result.TierName))
	}
	sb.WriteString(fmt.Sprintf("Días añadidos: %d\n", result.GrantedDays))
	if result.Subscription.ExpiryDate != nil {
		sb.WriteString(fmt.Sprintf("Tu acceso VIP vence el %s\n", result.Subscription.ExpiryDate.Format("02.01.2006 15:04")))
	}
	if result.InviteLink != "" {
		sb.WriteString(fmt.Sprintf("\nEntra al canal VIP: %s", result.InviteLink))
	}
	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) handleDaily(ctx context.Context, chatID, userID int64) {
	result, err := b.gamification.ClaimDaily(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if !result.Claimed {
		b.sendMessage(chatID, fmt.Sprintf("⏳ Ya reclamaste tu bono diario. Vuelve en %s.", service.FormatRetryIn(result.RetryIn)))
		return
	}

	text := fmt.Sprintf("✅ +%d puntos. Saldo actual: %d.", result.Points, result.Balance)
	if result.NewRank != nil {
		text += fmt.Sprintf("\n🏅 ¡Has alcanzado el rango %s!", result.NewRank.Name)
	}
	b.sendMessage(chatID, text)
}

func (b *Bot) handleInvite(ctx context.Context, chatID, userID int64) {
	link := b.gamification.ReferralLink(userID)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔗 Tu enlace de invitación:\n%s\n", link))

	summary, err := b.gamification.ProfileSummary(ctx, userID)
	if err == nil {
		sb.WriteString(fmt.Sprintf("\n⭐ Puntos: %d\n🏅 Rango: %s\n👥 Invitados: %d",
			summary.Points, summary.RankName, summary.ReferralsCount))
		if summary.NextRankName != "" {
			sb.WriteString(fmt.Sprintf("\n📈 Te faltan %d puntos para %s", summary.PointsToNext, summary.NextRankName))
		}
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleFree(ctx context.Context, chatID, userID int64) {
	result, err := b.channels.RequestAccess(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	minutes := int(result.RemainingWait.Minutes())
	if result.AlreadyPending {
		b.sendMessage(chatID, fmt.Sprintf("⏳ Ya tienes una solicitud en curso. Te enviaré el enlace en unos %d minutos.", minutes))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Solicitud registrada. Recibirás el enlace de acceso en unos %d minutos.", minutes))
}
