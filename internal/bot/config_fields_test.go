package bot

import (
	"context"
	"io"
	"testing"
	"time"

	"vipgate/internal/database"
	"vipgate/internal/domain"
	"vipgate/internal/models"
	"vipgate/internal/repository"
	"vipgate/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTelegram records outgoing calls; the embedded interface covers
// the methods these tests never reach.
type stubTelegram struct {
	domain.TelegramService
	sent     []string
	requests []tgbotapi.Chattable
}

func (s *stubTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	s.sent = append(s.sent, text)
	return tgbotapi.Message{}, nil
}

func (s *stubTelegram) SendWithInlineKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	s.sent = append(s.sent, text)
	return tgbotapi.Message{}, nil
}

func (s *stubTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newConfigFieldBot(t *testing.T) (*Bot, *stubTelegram) {
	t.Helper()

	db, err := database.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.New(io.Discard)
	stateRepo := repository.NewMemoryStateRepository(time.Minute)
	tg := &stubTelegram{}

	b := &Bot{
		tgService:     tg,
		configService: service.NewConfigService(db, &logger),
		stateService:  service.NewStateService(stateRepo, &logger),
		repo:          db,
		logger:        &logger,
	}
	return b, tg
}

func reactionFieldState(field string) *models.WizardState {
	return &models.WizardState{
		Wizard:   wizardConfigField,
		Step:     stepFieldValue,
		TempData: map[string]interface{}{"field": field},
	}
}

func TestParseReactionList(t *testing.T) {
	assert.Equal(t, []string{"👍", "❤️", "🔥"}, parseReactionList("👍, ❤️, 🔥"))
	assert.Equal(t, []string{"👍", "❤️"}, parseReactionList("👍 ❤️"))
	assert.Equal(t, []string{"👍"}, parseReactionList("  👍 , "))
	assert.Nil(t, parseReactionList("-"))
	assert.Nil(t, parseReactionList("  "))
}

func TestReactionFieldInputUpdatesConfig(t *testing.T) {
	b, _ := newConfigFieldBot(t)
	ctx := context.Background()

	handled := b.handleFieldInput(ctx, 1, 1, "👍, ❤️, 🔥", reactionFieldState(fieldVIPReactions))
	require.True(t, handled)

	cfg, err := b.configService.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"👍", "❤️", "🔥"}, cfg.VIPReactions)
	assert.Empty(t, cfg.FreeReactions)

	handled = b.handleFieldInput(ctx, 1, 1, "🎉", reactionFieldState(fieldFreeReactions))
	require.True(t, handled)

	cfg, err = b.configService.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🎉"}, cfg.FreeReactions)

	// "-" limpia la lista.
	require.True(t, b.handleFieldInput(ctx, 1, 1, "-", reactionFieldState(fieldVIPReactions)))
	cfg, err = b.configService.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.VIPReactions)
}

func TestReactionFieldInputRejectsEmpty(t *testing.T) {
	b, tg := newConfigFieldBot(t)
	ctx := context.Background()

	require.True(t, b.handleFieldInput(ctx, 1, 1, ", ,", reactionFieldState(fieldVIPReactions)))
	require.NotEmpty(t, tg.sent)
	assert.Contains(t, tg.sent[len(tg.sent)-1], "emoji")

	cfg, err := b.configService.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.VIPReactions)
}

// A fresh install has no reactions, so channel posts get no buttons;
// after an admin sets the list, new posts do.
func TestChannelPostButtonsFollowConfiguredReactions(t *testing.T) {
	b, tg := newConfigFieldBot(t)
	ctx := context.Background()

	_, err := b.configService.Update(ctx, func(cfg *models.BotConfig) {
		cfg.VIPChannelID = "-100555"
	})
	require.NoError(t, err)

	post := &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: -100555}}
	b.handleChannelPost(ctx, post)
	assert.Empty(t, tg.requests)

	require.True(t, b.handleFieldInput(ctx, 1, 1, "👍 🔥", reactionFieldState(fieldVIPReactions)))

	b.handleChannelPost(ctx, post)
	require.Len(t, tg.requests, 1)
	edit, ok := tg.requests[0].(tgbotapi.EditMessageReplyMarkupConfig)
	require.True(t, ok)
	require.NotNil(t, edit.ReplyMarkup)
	require.Len(t, edit.ReplyMarkup.InlineKeyboard, 1)
	assert.Len(t, edit.ReplyMarkup.InlineKeyboard[0], 2)
	assert.Equal(t, "👍", edit.ReplyMarkup.InlineKeyboard[0][0].Text)
}
