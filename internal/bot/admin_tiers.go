package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showTierList(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	tiers, err := b.repo.GetActiveTiers(ctx)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var sb strings.Builder
	sb.WriteString("🎟 Planes de suscripción\n\n")
	if len(tiers) == 0 {
		sb.WriteString("No hay planes activos todavía.")
	} else {
		sb.WriteString("Pulsa 🎫 para generar un token del plan, o ✏️ para editarlo.\n\n")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, tier := range tiers {
		sb.WriteString(fmt.Sprintf("• %s: %d días, $%.2f\n", tier.Name, tier.DurationDays, tier.PriceUSD))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎫 "+tier.Name, callbackData(ActionGenerateToken, tier.ID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️", callbackData(ActionEditTier, tier.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Nuevo plan", callbackData(ActionNewTier)),
	))
	rows = append(rows, backRow(ActionVIPMenu))

	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleGenerateToken(ctx context.Context, cb *tgbotapi.CallbackQuery, tierID int64) {
	_, link, err := b.subscriptions.IssueToken(ctx, cb.From.ID, &tierID, 0)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	tier, err := b.repo.GetTierByID(ctx, tierID)
	name := "plan"
	if err == nil {
		name = tier.Name
	}
	b.sendMessage(cb.Message.Chat.ID, fmt.Sprintf("🎫 Token generado para %s.\n\nEnvíale este enlace al cliente:\n%s", name, link))
}

func (b *Bot) showTierEditMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, tierID int64) {
	tier, err := b.repo.GetTierByID(ctx, tierID)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	text := fmt.Sprintf("✏️ Plan *%s*\n\nDuración: %d días\nPrecio: $%.2f", tier.Name, tier.DurationDays, tier.PriceUSD)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Nombre", callbackData(ActionEditTierName, tierID)),
			tgbotapi.NewInlineKeyboardButtonData("📆 Días", callbackData(ActionEditTierDays, tierID)),
			tgbotapi.NewInlineKeyboardButtonData("💵 Precio", callbackData(ActionEditTierPrice, tierID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Desactivar", callbackData(ActionDeactivateTier, tierID)),
		),
		backRow(ActionListTiers),
	)
	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard)
}

func (b *Bot) handleDeactivateTier(ctx context.Context, cb *tgbotapi.CallbackQuery, tierID int64) {
	if err := b.repo.DeactivateTier(ctx, tierID); err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	// Los tokens antiguos siguen resolviendo el plan desactivado.
	b.showTierList(ctx, cb, 0)
}
