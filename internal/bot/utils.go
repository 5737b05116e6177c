package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"vipgate/internal/events"
	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// reactionPrefix marks callback data from the emoji buttons the bot
// attaches under channel posts. Unlike admin actions the emoji set is
// open (configured per channel), so these stay outside the Action enum.
const reactionPrefix = "react:"

// tokenPattern matches the UUID shape of invitation tokens so plain
// text messages can be treated as a redemption attempt.
var tokenPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func looksLikeToken(text string) bool {
	return tokenPattern.MatchString(strings.TrimSpace(text))
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, adminID := range b.config.Admins {
		if userID == adminID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	if _, err := b.tgService.SendMarkdown(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// editOrSend replaces the menu message in place when handling a
// callback, or sends a new message otherwise.
func (b *Bot) editOrSend(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	var err error
	if messageID != 0 {
		_, err = b.tgService.EditMessage(chatID, messageID, text, &keyboard)
	} else {
		_, err = b.tgService.SendWithInlineKeyboard(chatID, text, keyboard)
	}
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to render menu")
	}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.WizardState {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to get user state")
		return nil
	}
	return state
}

func (b *Bot) setUserState(ctx context.Context, userID int64, wizard, step string, data map[string]interface{}) {
	if err := b.stateService.SetUserState(ctx, userID, wizard, step, data); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to set user state")
	}
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
	}
}

// handleChannelPost attaches the configured reaction emoji buttons
// under new posts in the managed channels. Pressing one is the only
// reaction signal available to the bot, and feeds the points ledger.
func (b *Bot) handleChannelPost(ctx context.Context, post *tgbotapi.Message) {
	cfg, err := b.configService.Get(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load config for channel post")
		return
	}

	chatID := strconv.FormatInt(post.Chat.ID, 10)
	var reactions []string
	switch chatID {
	case cfg.VIPChannelID:
		reactions = cfg.VIPReactions
	case cfg.FreeChannelID:
		reactions = cfg.FreeReactions
	default:
		return
	}

	if len(reactions) == 0 {
		return
	}

	var row []tgbotapi.InlineKeyboardButton
	for _, emoji := range reactions {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(emoji, reactionPrefix+emoji))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(row)

	edit := tgbotapi.NewEditMessageReplyMarkup(post.Chat.ID, post.MessageID, markup)
	if _, err := b.tgService.Request(edit); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", post.Chat.ID).Msg("Failed to attach reaction buttons")
	}
}

func (b *Bot) handleReactionCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	emoji := strings.TrimPrefix(cb.Data, reactionPrefix)
	if cb.Message == nil {
		return
	}

	cfg, err := b.configService.Get(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load config for reaction")
		return
	}

	channel := models.ChannelFree
	if strconv.FormatInt(cb.Message.Chat.ID, 10) == cfg.VIPChannelID {
		channel = models.ChannelVIP
	}

	payload := events.ReactionEventPayload{
		UserID:    cb.From.ID,
		ChatID:    cb.Message.Chat.ID,
		MessageID: cb.Message.MessageID,
		Emoji:     emoji,
		Channel:   channel,
	}
	if err := b.eventBus.PublishJSON(events.EventChannelReaction, payload); err != nil {
		b.logger.Error().Err(err).Int64("user_id", cb.From.ID).Msg("Failed to publish reaction event")
	}

	_ = b.tgService.AnswerCallback(cb.ID, fmt.Sprintf("%s +%d puntos", emoji, models.PointsPerReaction))
}
