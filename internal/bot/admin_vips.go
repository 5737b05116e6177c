package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const vipsPerPage = 5

func (b *Bot) showVIPPage(ctx context.Context, cb *tgbotapi.CallbackQuery, pageArg int64) {
	page := int(pageArg)
	subs, total, err := b.subscriptions.ListActiveVIPs(ctx, page*vipsPerPage, vipsPerPage)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var content strings.Builder
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, sub := range subs {
		expiry := "sin fecha"
		if sub.ExpiryDate != nil {
			expiry = sub.ExpiryDate.Format("02.01.2006 15:04")
		}
		content.WriteString(fmt.Sprintf("👤 %d\n   ⏳ vence: %s\n\n", sub.UserID, expiry))
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🚫 Revocar %d", sub.UserID),
				callbackData(ActionRevokeVIP, sub.UserID),
			),
		))
	}
	if len(subs) == 0 {
		content.WriteString("No hay suscriptores VIP activos.")
	}

	b.renderPaginatedList(PaginationParams{
		ChatID:       cb.Message.Chat.ID,
		MessageID:    cb.Message.MessageID,
		Page:         page,
		Title:        fmt.Sprintf("👥 Suscriptores VIP activos: %d", total),
		PageAction:   ActionVIPList,
		BackCallback: callbackData(ActionVIPMenu),
	}, int(total), vipsPerPage, content.String(), keyboard)
}

func (b *Bot) handleRevokeVIP(ctx context.Context, cb *tgbotapi.CallbackQuery, userID int64) {
	if err := b.subscriptions.RevokeAccess(ctx, userID); err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(cb.Message.Chat.ID, fmt.Sprintf("🚫 Acceso VIP de %d revocado.", userID))
	b.showVIPPage(ctx, cb, 0)
}

func (b *Bot) handleVIPExport(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	filePath, err := b.exportVIPsToExcel(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to export VIPs")
		b.sendMessage(cb.Message.Chat.ID, "❌ No se pudo generar el archivo de exportación.")
		return
	}

	doc := tgbotapi.NewDocument(cb.Message.Chat.ID, tgbotapi.FilePath(filePath))
	doc.Caption = "📤 Suscriptores VIP activos"
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Str("file", filePath).Msg("Failed to send export file")
		b.sendMessage(cb.Message.Chat.ID, "❌ No se pudo enviar el archivo de exportación.")
	}
}
