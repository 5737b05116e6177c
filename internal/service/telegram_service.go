package service

import (
	"encoding/json"
	"fmt"
	"time"

	"vipgate/internal/domain"
	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramService struct {
	bot domain.TelegramSender
}

func NewTelegramService(bot domain.TelegramSender) *TelegramService {
	return &TelegramService{
		bot: bot,
	}
}

func (s *TelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.bot.Send(c)
}

func (s *TelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return s.bot.Request(c)
}

func (s *TelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	return s.bot.Send(msg)
}

func (s *TelegramService) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeMarkdown
	return s.bot.Send(msg)
}

func (s *TelegramService) SendWithInlineKeyboard(
	chatID int64,
	text string,
	keyboard tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return s.bot.Send(msg)
}

func (s *TelegramService) EditMessage(
	chatID int64,
	messageID int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	if keyboard != nil {
		msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard)
		msg.ParseMode = models.ParseModeMarkdown
		return s.bot.Send(msg)
	}
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = models.ParseModeMarkdown
	return s.bot.Send(msg)
}

func (s *TelegramService) AnswerCallback(callbackID, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := s.bot.Request(callback)
	return err
}

// SendMediaGroup delivers photos and videos as a single album. With
// protect set, the album is sent with protect_content so receivers
// cannot forward or save it. The library's MediaGroupConfig predates
// that field, so the protected path goes through MakeRequest.
func (s *TelegramService) SendMediaGroup(chatID int64, media []interface{}, protect bool) ([]tgbotapi.Message, error) {
	var resp *tgbotapi.APIResponse
	var err error
	if protect {
		params := make(tgbotapi.Params)
		params.AddNonZero64("chat_id", chatID)
		params.AddBool("protect_content", true)
		if err = params.AddInterface("media", media); err != nil {
			return nil, err
		}
		resp, err = s.bot.MakeRequest("sendMediaGroup", params)
	} else {
		resp, err = s.bot.Request(tgbotapi.NewMediaGroup(chatID, media))
	}
	if err != nil {
		return nil, err
	}

	var messages []tgbotapi.Message
	if err := json.Unmarshal(resp.Result, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode media group response: %w", err)
	}
	return messages, nil
}

// SendDocument sends a stored file by its file id, optionally with
// protect_content (same MakeRequest detour as SendMediaGroup).
func (s *TelegramService) SendDocument(chatID int64, fileID string, protect bool) (tgbotapi.Message, error) {
	if !protect {
		return s.bot.Send(tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID)))
	}

	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", chatID)
	params.AddNonEmpty("document", fileID)
	params.AddBool("protect_content", true)
	resp, err := s.bot.MakeRequest("sendDocument", params)
	if err != nil {
		return tgbotapi.Message{}, err
	}

	var msg tgbotapi.Message
	if err := json.Unmarshal(resp.Result, &msg); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("failed to decode document response: %w", err)
	}
	return msg, nil
}

// CreateInviteLink issues a single-use invite link to a channel.
func (s *TelegramService) CreateInviteLink(chatID int64, memberLimit int, expireAt time.Time) (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		MemberLimit: memberLimit,
	}
	if !expireAt.IsZero() {
		cfg.ExpireDate = int(expireAt.Unix())
	}

	resp, err := s.bot.Request(cfg)
	if err != nil {
		return "", err
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("failed to decode invite link response: %w", err)
	}
	return link.InviteLink, nil
}

func (s *TelegramService) BanChatMember(chatID, userID int64) error {
	cfg := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	}
	_, err := s.bot.Request(cfg)
	return err
}

func (s *TelegramService) UnbanChatMember(chatID, userID int64) error {
	cfg := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		OnlyIfBanned:     true,
	}
	_, err := s.bot.Request(cfg)
	return err
}

func (s *TelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return s.bot.GetUpdatesChan(config)
}

func (s *TelegramService) GetSelf() tgbotapi.User {
	return s.bot.GetSelf()
}

func (s *TelegramService) StopReceivingUpdates() {
	s.bot.StopReceivingUpdates()
}
