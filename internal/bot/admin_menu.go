package bot

import (
	"context"
	"fmt"
	"strings"

	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Canal VIP", callbackData(ActionVIPMenu)),
			tgbotapi.NewInlineKeyboardButtonData("🆓 Canal gratuito", callbackData(ActionFreeMenu)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏅 Rangos y premios", callbackData(ActionRanksMenu)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Configuración", callbackData(ActionConfigMenu)),
			tgbotapi.NewInlineKeyboardButtonData("📊 Estadísticas", callbackData(ActionStatsMenu)),
		),
	)
}

func backRow(action Action) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Volver", callbackData(action)),
	)
}

func (b *Bot) sendAdminMenu(_ context.Context, chatID int64) {
	_, err := b.tgService.SendWithInlineKeyboard(chatID, "🔧 Menú de administración", mainMenuKeyboard())
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send admin menu")
	}
}

func (b *Bot) showMainMenu(_ context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, "🔧 Menú de administración", mainMenuKeyboard())
}

func (b *Bot) showVIPMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	count, err := b.repo.CountActiveVIPs(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to count VIPs")
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎟 Planes y tokens", callbackData(ActionListTiers)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Suscriptores", callbackData(ActionVIPList, 0)),
			tgbotapi.NewInlineKeyboardButtonData("📤 Exportar", callbackData(ActionVIPExport)),
		),
		backRow(ActionMainMenu),
	)
	text := fmt.Sprintf("⭐ Canal VIP\n\nSuscriptores activos: %d", count)
	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard)
}

func (b *Bot) showFreeMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	cfg, err := b.configService.Get(ctx)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	total, pending, err := b.repo.GetRequestStats(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to get request stats")
	}

	text := fmt.Sprintf("🆓 Canal gratuito\n\nTiempo de espera: %d minutos\nSolicitudes totales: %d\nSolicitudes pendientes: %d",
		cfg.WaitTimeMinutes, total, pending)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏱ Tiempo de espera", callbackData(ActionSetWaitTime)),
		),
		backRow(ActionMainMenu),
	)
	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard)
}

func (b *Bot) showConfigMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	cfg, err := b.configService.Get(ctx)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	orNone := func(s string) string {
		if s == "" {
			return "sin configurar"
		}
		return s
	}
	onOff := func(v bool) string {
		if v {
			return "activada"
		}
		return "desactivada"
	}

	var sb strings.Builder
	sb.WriteString("⚙️ Configuración\n\n")
	sb.WriteString(fmt.Sprintf("Canal VIP: %s\n", orNone(cfg.VIPChannelID)))
	sb.WriteString(fmt.Sprintf("Canal gratuito: %s\n", orNone(cfg.FreeChannelID)))
	sb.WriteString(fmt.Sprintf("Protección VIP: %s\n", onOff(cfg.VIPProtected)))
	sb.WriteString(fmt.Sprintf("Protección gratuito: %s\n", onOff(cfg.FreeProtected)))
	sb.WriteString(fmt.Sprintf("Reacciones VIP: %s\n", strings.Join(cfg.VIPReactions, " ")))
	sb.WriteString(fmt.Sprintf("Reacciones gratuito: %s", strings.Join(cfg.FreeReactions, " ")))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Canal VIP", callbackData(ActionSetVIPChannel)),
			tgbotapi.NewInlineKeyboardButtonData("🆓 Canal gratuito", callbackData(ActionSetFreeChannel)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔒 Protección VIP", callbackData(ActionToggleVIPProtect)),
			tgbotapi.NewInlineKeyboardButtonData("🔒 Protección gratuito", callbackData(ActionToggleFreeProtect)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Reacciones VIP", callbackData(ActionSetVIPReactions)),
			tgbotapi.NewInlineKeyboardButtonData("💬 Reacciones gratuito", callbackData(ActionSetFreeReactions)),
		),
		backRow(ActionMainMenu),
	)
	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, sb.String(), keyboard)
}

func (b *Bot) toggleProtection(vip bool) actionHandler {
	return func(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
		_, err := b.configService.Update(ctx, func(cfg *models.BotConfig) {
			if vip {
				cfg.VIPProtected = !cfg.VIPProtected
			} else {
				cfg.FreeProtected = !cfg.FreeProtected
			}
		})
		if err != nil {
			b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
			return
		}
		b.showConfigMenu(ctx, cb, 0)
	}
}

func (b *Bot) showStatsMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	stats, err := b.channels.Stats(ctx)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	text := fmt.Sprintf("📊 Estadísticas\n\nSuscriptores VIP activos: %d\nSolicitudes gratuitas totales: %d\nSolicitudes pendientes: %d",
		stats.ActiveSubscribers, stats.TotalRequests, stats.PendingRequests)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(backRow(ActionMainMenu))
	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard)
}
