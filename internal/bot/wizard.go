package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vipgate/internal/database"
	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Wizard identifiers and steps. Each wizard advances through the
// transition table below; state lives in the state repository so an
// admin can resume a half-finished wizard after a restart.
const (
	wizardTierCreate  = "tier_create"
	wizardRankReward  = "rank_reward"
	wizardPackCreate  = "pack_create"
	wizardConfigField = "config_field"

	stepTierName     = "tier_name"
	stepTierDays     = "tier_days"
	stepTierPrice    = "tier_price"
	stepRankAskVIP   = "rank_ask_vip"
	stepRankVIPDays  = "rank_vip_days"
	stepRankAskPack  = "rank_ask_pack"
	stepRankPickPack = "rank_pick_pack"
	stepPackName     = "pack_name"
	stepPackMedia    = "pack_media"
	stepFieldValue   = "field_value"
	stepDone         = "done"

	wizardEventInput = "input"
	wizardEventYes   = "yes"
	wizardEventNo    = "no"
	wizardEventDone  = "done"
)

// Editable single-value fields driven through the config_field wizard.
const (
	fieldWaitTime      = "wait_time"
	fieldVIPChannel    = "vip_channel"
	fieldFreeChannel   = "free_channel"
	fieldVIPReactions  = "vip_reactions"
	fieldFreeReactions = "free_reactions"
	fieldTierName      = "tier_name"
	fieldTierDays      = "tier_days"
	fieldTierPrice     = "tier_price"
)

type wizardKey struct {
	step  string
	event string
}

// wizardTransitions is the full state machine: (wizard, step, event)
// resolves to the next step or nothing. The rank wizard's "no VIP
// days" answer jumps straight to the pack question.
var wizardTransitions = map[string]map[wizardKey]string{
	wizardTierCreate: {
		{stepTierName, wizardEventInput}:  stepTierDays,
		{stepTierDays, wizardEventInput}:  stepTierPrice,
		{stepTierPrice, wizardEventInput}: stepDone,
	},
	wizardRankReward: {
		{stepRankAskVIP, wizardEventYes}:     stepRankVIPDays,
		{stepRankAskVIP, wizardEventNo}:      stepRankAskPack,
		{stepRankVIPDays, wizardEventInput}:  stepRankAskPack,
		{stepRankAskPack, wizardEventYes}:    stepRankPickPack,
		{stepRankAskPack, wizardEventNo}:     stepDone,
		{stepRankPickPack, wizardEventInput}: stepDone,
	},
	wizardPackCreate: {
		{stepPackName, wizardEventInput}:  stepPackMedia,
		{stepPackMedia, wizardEventInput}: stepPackMedia,
		{stepPackMedia, wizardEventDone}:  stepDone,
	},
	wizardConfigField: {
		{stepFieldValue, wizardEventInput}: stepDone,
	},
}

func nextWizardStep(wizard, step, event string) (string, bool) {
	table, ok := wizardTransitions[wizard]
	if !ok {
		return "", false
	}
	next, ok := table[wizardKey{step, event}]
	return next, ok
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancelar", callbackData(ActionCancelWizard)),
		),
	)
}

func yesNoKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Sí", callbackData(ActionWizardYes)),
			tgbotapi.NewInlineKeyboardButtonData("❌ No", callbackData(ActionWizardNo)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancelar", callbackData(ActionCancelWizard)),
		),
	)
}

func (b *Bot) startTierWizard(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	b.setUserState(ctx, cb.From.ID, wizardTierCreate, stepTierName, nil)
	_, _ = b.tgService.SendWithInlineKeyboard(cb.Message.Chat.ID,
		"🆕 Nuevo plan de suscripción.\n\nEscribe el nombre del plan:", cancelKeyboard())
}

func (b *Bot) startRankWizard(ctx context.Context, cb *tgbotapi.CallbackQuery, rankID int64) {
	rank, err := b.repo.GetRankByID(ctx, rankID)
	if err != nil {
		b.sendMessage(cb.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.setUserState(ctx, cb.From.ID, wizardRankReward, stepRankAskVIP, map[string]interface{}{
		"rank_id": rankID,
	})
	text := fmt.Sprintf("🏅 Recompensas del rango *%s* (mínimo %d puntos).\n\n¿Conceder días VIP al alcanzarlo?",
		rank.Name, rank.MinPoints)
	b.editOrSend(cb.Message.Chat.ID, cb.Message.MessageID, text, yesNoKeyboard())
}

func (b *Bot) startPackWizard(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	b.setUserState(ctx, cb.From.ID, wizardPackCreate, stepPackName, nil)
	_, _ = b.tgService.SendWithInlineKeyboard(cb.Message.Chat.ID,
		"📦 Nuevo paquete de contenido.\n\nEscribe el nombre del paquete:", cancelKeyboard())
}

// startTierFieldInput prompts for a new value of one tier field. The
// tier id travels in the wizard state, not the callback data of the
// following text message.
func (b *Bot) startTierFieldInput(field string) actionHandler {
	prompts := map[string]string{
		fieldTierName:  "Escribe el nuevo nombre del plan:",
		fieldTierDays:  "Escribe la nueva duración en días:",
		fieldTierPrice: "Escribe el nuevo precio en USD:",
	}
	return func(ctx context.Context, cb *tgbotapi.CallbackQuery, tierID int64) {
		b.setUserState(ctx, cb.From.ID, wizardConfigField, stepFieldValue, map[string]interface{}{
			"field":   field,
			"tier_id": tierID,
		})
		_, _ = b.tgService.SendWithInlineKeyboard(cb.Message.Chat.ID, prompts[field], cancelKeyboard())
	}
}

func (b *Bot) startConfigInput(field string) actionHandler {
	prompts := map[string]string{
		fieldWaitTime:      "Escribe el tiempo de espera en minutos para el canal gratuito:",
		fieldVIPChannel:    "Escribe el ID del canal VIP (por ejemplo -1001234567890):",
		fieldFreeChannel:   "Escribe el ID del canal gratuito (por ejemplo -1001234567890):",
		fieldVIPReactions:  "Escribe los emojis de reacción para el canal VIP, separados por comas (por ejemplo 👍, ❤️, 🔥). Escribe - para quitarlos:",
		fieldFreeReactions: "Escribe los emojis de reacción para el canal gratuito, separados por comas (por ejemplo 👍, ❤️, 🔥). Escribe - para quitarlos:",
	}
	return func(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
		b.setUserState(ctx, cb.From.ID, wizardConfigField, stepFieldValue, map[string]interface{}{
			"field": field,
		})
		_, _ = b.tgService.SendWithInlineKeyboard(cb.Message.Chat.ID, prompts[field], cancelKeyboard())
	}
}

func (b *Bot) handleCancelWizard(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
	b.clearUserState(ctx, cb.From.ID)
	b.sendMessage(cb.Message.Chat.ID, "Operación cancelada.")
	b.showMainMenu(ctx, cb, 0)
}

// handleWizardAnswer advances a wizard on a yes/no button press.
func (b *Bot) handleWizardAnswer(event string) actionHandler {
	return func(ctx context.Context, cb *tgbotapi.CallbackQuery, _ int64) {
		state := b.getUserState(ctx, cb.From.ID)
		if state == nil {
			return
		}
		b.advanceWizard(ctx, cb.Message.Chat.ID, cb.From.ID, state, event)
	}
}

// handlePickPack stores the selected content pack and finishes the
// rank wizard.
func (b *Bot) handlePickPack(ctx context.Context, cb *tgbotapi.CallbackQuery, packID int64) {
	state := b.getUserState(ctx, cb.From.ID)
	if state == nil || state.Wizard != wizardRankReward || state.Step != stepRankPickPack {
		return
	}
	state.Set("pack_id", packID)
	b.advanceWizard(ctx, cb.Message.Chat.ID, cb.From.ID, state, wizardEventInput)
}

// advanceWizard resolves the next step from the transition table,
// persists it and renders the prompt for (or finalizes) the new step.
func (b *Bot) advanceWizard(ctx context.Context, chatID, userID int64, state *models.WizardState, event string) {
	next, ok := nextWizardStep(state.Wizard, state.Step, event)
	if !ok {
		b.logger.Warn().
			Str("wizard", state.Wizard).
			Str("step", state.Step).
			Str("event", event).
			Msg("No wizard transition")
		return
	}

	if next == stepDone {
		b.finishWizard(ctx, chatID, userID, state)
		return
	}

	state.Step = next
	b.setUserState(ctx, userID, state.Wizard, next, state.TempData)
	b.promptWizardStep(ctx, chatID, state)
}

func (b *Bot) promptWizardStep(ctx context.Context, chatID int64, state *models.WizardState) {
	switch state.Step {
	case stepTierDays:
		_, _ = b.tgService.SendWithInlineKeyboard(chatID, "Escribe la duración del plan en días:", cancelKeyboard())
	case stepTierPrice:
		_, _ = b.tgService.SendWithInlineKeyboard(chatID, "Escribe el precio en USD (por ejemplo 9.99):", cancelKeyboard())
	case stepRankVIPDays:
		_, _ = b.tgService.SendWithInlineKeyboard(chatID, "¿Cuántos días VIP concede este rango?", cancelKeyboard())
	case stepRankAskPack:
		_, _ = b.tgService.SendWithInlineKeyboard(chatID, "¿Entregar un paquete de contenido al alcanzar el rango?", yesNoKeyboard())
	case stepRankPickPack:
		b.promptPackChoice(ctx, chatID)
	case stepPackMedia:
		_, _ = b.tgService.SendWithInlineKeyboard(chatID,
			"Envía fotos, videos o documentos para el paquete.\nCuando termines, escribe /done.", cancelKeyboard())
	}
}

func (b *Bot) promptPackChoice(ctx context.Context, chatID int64) {
	packs, err := b.repo.ListPacks(ctx)
	if err != nil || len(packs) == 0 {
		b.sendMessage(chatID, "No hay paquetes de contenido. Crea uno primero desde el menú de rangos.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, pack := range packs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(pack.Name, callbackData(ActionPickPack, pack.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancelar", callbackData(ActionCancelWizard)),
	))
	_, _ = b.tgService.SendWithInlineKeyboard(chatID, "Elige el paquete de contenido:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// handleWizardInput consumes a message while a wizard is active.
// Returns false when no wizard is running so the caller can treat the
// message as a normal command.
func (b *Bot) handleWizardInput(ctx context.Context, update tgbotapi.Update, state *models.WizardState) bool {
	if state == nil {
		return false
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)

	switch state.Wizard {
	case wizardTierCreate:
		return b.handleTierCreateInput(ctx, chatID, userID, text, state)
	case wizardPackCreate:
		return b.handlePackCreateInput(ctx, update, state)
	case wizardRankReward:
		if state.Step != stepRankVIPDays {
			// Остальные шаги управляются кнопками.
			return true
		}
		days, err := strconv.Atoi(text)
		if err != nil || days <= 0 {
			b.sendMessage(chatID, "Introduce un número de días válido (mayor que cero).")
			return true
		}
		state.Set("vip_days", int64(days))
		b.advanceWizard(ctx, chatID, userID, state, wizardEventInput)
		return true
	case wizardConfigField:
		return b.handleFieldInput(ctx, chatID, userID, text, state)
	}
	return false
}

func (b *Bot) handleTierCreateInput(ctx context.Context, chatID, userID int64, text string, state *models.WizardState) bool {
	switch state.Step {
	case stepTierName:
		if text == "" {
			b.sendMessage(chatID, "El nombre no puede estar vacío.")
			return true
		}
		state.Set("name", text)
	case stepTierDays:
		days, err := strconv.Atoi(text)
		if err != nil || days <= 0 {
			b.sendMessage(chatID, "Introduce un número de días válido (mayor que cero).")
			return true
		}
		state.Set("days", int64(days))
	case stepTierPrice:
		price, err := strconv.ParseFloat(text, 64)
		if err != nil || price < 0 {
			b.sendMessage(chatID, "Introduce un precio válido, por ejemplo 9.99.")
			return true
		}
		state.Set("price", price)
	default:
		return true
	}
	b.advanceWizard(ctx, chatID, userID, state, wizardEventInput)
	return true
}

func (b *Bot) handlePackCreateInput(ctx context.Context, update tgbotapi.Update, state *models.WizardState) bool {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)

	switch state.Step {
	case stepPackName:
		if text == "" {
			b.sendMessage(chatID, "El nombre no puede estar vacío.")
			return true
		}
		pack, err := b.repo.CreatePack(ctx, text)
		if err != nil {
			b.sendMessage(chatID, b.getErrorMessage(err))
			return true
		}
		state.Set("pack_id", pack.ID)
		b.advanceWizard(ctx, chatID, userID, state, wizardEventInput)
		return true

	case stepPackMedia:
		if text == "/done" || strings.EqualFold(text, "listo") {
			b.advanceWizard(ctx, chatID, userID, state, wizardEventDone)
			return true
		}

		fileID, uniqueID, mediaType := extractMedia(update.Message)
		if fileID == "" {
			b.sendMessage(chatID, "Envía una foto, video o documento, o escribe /done para terminar.")
			return true
		}

		packID := state.GetInt64("pack_id")
		if _, err := b.repo.AddFileToPack(ctx, packID, fileID, uniqueID, mediaType); err != nil {
			b.sendMessage(chatID, b.getErrorMessage(err))
			return true
		}
		count := state.GetInt64("count") + 1
		state.Set("count", count)
		b.setUserState(ctx, userID, state.Wizard, state.Step, state.TempData)
		b.sendMessage(chatID, fmt.Sprintf("Añadido (%d en total). Envía más o escribe /done.", count))
		return true
	}
	return true
}

func (b *Bot) handleFieldInput(ctx context.Context, chatID, userID int64, text string, state *models.WizardState) bool {
	field := state.GetString("field")
	tierID := state.GetInt64("tier_id")

	var err error
	switch field {
	case fieldWaitTime:
		var minutes int
		minutes, err = strconv.Atoi(text)
		if err != nil || minutes < 0 {
			b.sendMessage(chatID, "Introduce un número de minutos válido.")
			return true
		}
		_, err = b.configService.Update(ctx, func(cfg *models.BotConfig) {
			cfg.WaitTimeMinutes = minutes
		})
	case fieldVIPChannel, fieldFreeChannel:
		if _, parseErr := strconv.ParseInt(text, 10, 64); parseErr != nil {
			b.sendMessage(chatID, "El ID del canal debe ser numérico, por ejemplo -1001234567890.")
			return true
		}
		_, err = b.configService.Update(ctx, func(cfg *models.BotConfig) {
			if field == fieldVIPChannel {
				cfg.VIPChannelID = text
			} else {
				cfg.FreeChannelID = text
			}
		})
	case fieldVIPReactions, fieldFreeReactions:
		reactions := parseReactionList(text)
		if text != "-" && len(reactions) == 0 {
			b.sendMessage(chatID, "Escribe al menos un emoji, separados por comas, o - para quitarlos.")
			return true
		}
		_, err = b.configService.Update(ctx, func(cfg *models.BotConfig) {
			if field == fieldVIPReactions {
				cfg.VIPReactions = reactions
			} else {
				cfg.FreeReactions = reactions
			}
		})
	case fieldTierName:
		if text == "" {
			b.sendMessage(chatID, "El nombre no puede estar vacío.")
			return true
		}
		err = b.repo.UpdateTierName(ctx, tierID, text)
	case fieldTierDays:
		var days int
		days, err = strconv.Atoi(text)
		if err != nil || days <= 0 {
			b.sendMessage(chatID, "Introduce un número de días válido (mayor que cero).")
			return true
		}
		err = b.repo.UpdateTierDuration(ctx, tierID, days)
	case fieldTierPrice:
		var price float64
		price, err = strconv.ParseFloat(text, 64)
		if err != nil || price < 0 {
			b.sendMessage(chatID, "Introduce un precio válido, por ejemplo 9.99.")
			return true
		}
		err = b.repo.UpdateTierPrice(ctx, tierID, price)
	default:
		b.clearUserState(ctx, userID)
		return true
	}

	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return true
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(chatID, "✅ Guardado.")
	return true
}

// finishWizard applies the collected data and clears the state.
func (b *Bot) finishWizard(ctx context.Context, chatID, userID int64, state *models.WizardState) {
	defer b.clearUserState(ctx, userID)

	switch state.Wizard {
	case wizardTierCreate:
		tier := &models.SubscriptionTier{
			Name:         state.GetString("name"),
			DurationDays: int(state.GetInt64("days")),
			PriceUSD:     state.GetFloat("price"),
			IsActive:     true,
		}
		if err := b.repo.CreateTier(ctx, tier); err != nil {
			if errors.Is(err, database.ErrDuplicateName) {
				b.sendMessage(chatID, "⚠️ Ya existe un plan con ese nombre.")
				return
			}
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
		b.sendMarkdown(chatID, fmt.Sprintf("✅ Plan *%s* creado: %d días por $%.2f.",
			tier.Name, tier.DurationDays, tier.PriceUSD))

	case wizardRankReward:
		rankID := state.GetInt64("rank_id")
		vipDays := int(state.GetInt64("vip_days"))
		var packID *int64
		if id := state.GetInt64("pack_id"); id != 0 {
			packID = &id
		}
		if err := b.repo.UpdateRankRewards(ctx, rankID, vipDays, packID); err != nil {
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
		b.sendMessage(chatID, "✅ Recompensas del rango actualizadas.")

	case wizardPackCreate:
		count := state.GetInt64("count")
		if count == 0 {
			b.sendMessage(chatID, "⚠️ El paquete quedó vacío. Puedes añadir archivos más tarde o eliminarlo.")
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("✅ Paquete creado con %d archivos.", count))
	}
}

// parseReactionList splits a comma or space separated emoji string
// into the list stored in the config. "-" clears the list.
func parseReactionList(text string) []string {
	if text == "-" {
		return nil
	}
	var reactions []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			reactions = append(reactions, part)
		}
	}
	return reactions
}

// extractMedia pulls the strongest media reference out of a message.
func extractMedia(msg *tgbotapi.Message) (fileID, uniqueID, mediaType string) {
	switch {
	case len(msg.Photo) > 0:
		best := msg.Photo[len(msg.Photo)-1]
		return best.FileID, best.FileUniqueID, models.MediaTypePhoto
	case msg.Video != nil:
		return msg.Video.FileID, msg.Video.FileUniqueID, models.MediaTypeVideo
	case msg.Document != nil:
		return msg.Document.FileID, msg.Document.FileUniqueID, models.MediaTypeDocument
	}
	return "", "", ""
}
