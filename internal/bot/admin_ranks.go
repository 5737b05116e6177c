package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showRanksMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	ranks, err := b.repo.GetAllRanks(ctx)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var sb strings.Builder
	sb.WriteString("🏅 Rangos\n\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, rank := range ranks {
		sb.WriteString(fmt.Sprintf("• %s (desde %d puntos)", rank.Name, rank.MinPoints))
		if rank.RewardVIPDays > 0 {
			sb.WriteString(fmt.Sprintf(" — %d días VIP", rank.RewardVIPDays))
		}
		if rank.RewardContentPackID != nil {
			sb.WriteString(" — paquete de contenido")
		}
		sb.WriteString("\n")

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+rank.Name, callbackData(ActionEditRank, rank.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📦 Paquetes de contenido", callbackData(ActionListPacks)),
	))
	rows = append(rows, backRow(ActionMainMenu))

	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showPackList(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	packs, err := b.repo.ListPacks(ctx)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var sb strings.Builder
	sb.WriteString("📦 Paquetes de contenido\n\n")
	if len(packs) == 0 {
		sb.WriteString("No hay paquetes todavía.")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, pack := range packs {
		files, err := b.repo.GetPackFiles(ctx, pack.ID)
		if err != nil {
			b.logger.Error().Err(err).Int64("pack_id", pack.ID).Msg("Failed to count pack files")
		}
		sb.WriteString(fmt.Sprintf("• %s (%d archivos)\n", pack.Name, len(files)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+pack.Name, callbackData(ActionDeletePack, pack.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Nuevo paquete", callbackData(ActionNewPack)),
	))
	rows = append(rows, backRow(ActionRanksMenu))

	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleDeletePack(ctx context.Context, cb *tgbotapi.CallbackQuery, packID int64) {
	if err := b.repo.DeletePack(ctx, packID); err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	b.showPackList(ctx, cb, 0)
}
