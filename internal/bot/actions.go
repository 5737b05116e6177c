package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Action is a closed set of admin menu operations. Callback data is
// "<name>" or "<name>:<arg>" and is resolved through actionByName, so
// an unknown or malformed callback can never reach a handler.
type Action int

const (
	ActionUnknown Action = iota
	ActionMainMenu
	ActionVIPMenu
	ActionFreeMenu
	ActionConfigMenu
	ActionStatsMenu
	ActionRanksMenu

	ActionListTiers
	ActionGenerateToken // arg: tier id
	ActionNewTier
	ActionEditTier       // arg: tier id
	ActionEditTierName   // arg: tier id
	ActionEditTierDays   // arg: tier id
	ActionEditTierPrice  // arg: tier id
	ActionDeactivateTier // arg: tier id

	ActionVIPList   // arg: page
	ActionVIPExport
	ActionRevokeVIP // arg: user id

	ActionSetWaitTime
	ActionSetVIPChannel
	ActionSetFreeChannel
	ActionSetVIPReactions
	ActionSetFreeReactions
	ActionToggleVIPProtect
	ActionToggleFreeProtect

	ActionEditRank // arg: rank id
	ActionListPacks
	ActionNewPack
	ActionDeletePack // arg: pack id
	ActionPickPack   // arg: pack id, wizard answer

	ActionWizardYes
	ActionWizardNo
	ActionCancelWizard
)

var actionNames = map[Action]string{
	ActionMainMenu:          "menu_main",
	ActionVIPMenu:           "menu_vip",
	ActionFreeMenu:          "menu_free",
	ActionConfigMenu:        "menu_config",
	ActionStatsMenu:         "menu_stats",
	ActionRanksMenu:         "menu_ranks",
	ActionListTiers:         "tiers",
	ActionGenerateToken:     "gen_token",
	ActionNewTier:           "tier_new",
	ActionEditTier:          "tier_edit",
	ActionEditTierName:      "tier_name",
	ActionEditTierDays:      "tier_days",
	ActionEditTierPrice:     "tier_price",
	ActionDeactivateTier:    "tier_off",
	ActionVIPList:           "vip_list",
	ActionVIPExport:         "vip_export",
	ActionRevokeVIP:         "vip_revoke",
	ActionSetWaitTime:       "cfg_wait",
	ActionSetVIPChannel:     "cfg_vip_ch",
	ActionSetFreeChannel:    "cfg_free_ch",
	ActionSetVIPReactions:   "cfg_vip_react",
	ActionSetFreeReactions:  "cfg_free_react",
	ActionToggleVIPProtect:  "cfg_vip_prot",
	ActionToggleFreeProtect: "cfg_free_prot",
	ActionEditRank:          "rank_edit",
	ActionListPacks:         "packs",
	ActionNewPack:           "pack_new",
	ActionDeletePack:        "pack_del",
	ActionPickPack:          "pack_pick",
	ActionWizardYes:         "wz_yes",
	ActionWizardNo:          "wz_no",
	ActionCancelWizard:      "wz_cancel",
}

var actionByName = func() map[string]Action {
	m := make(map[string]Action, len(actionNames))
	for action, name := range actionNames {
		m[name] = action
	}
	return m
}()

// callbackData encodes an action (optionally with one numeric argument)
// into Telegram callback data.
func callbackData(action Action, args ...int64) string {
	name := actionNames[action]
	if len(args) > 0 {
		return name + ":" + strconv.FormatInt(args[0], 10)
	}
	return name
}

// parseAction resolves callback data back into an action and argument.
func parseAction(data string) (Action, int64, bool) {
	name, argStr, hasArg := strings.Cut(data, ":")
	action, ok := actionByName[name]
	if !ok {
		return ActionUnknown, 0, false
	}
	var arg int64
	if hasArg {
		var err error
		arg, err = strconv.ParseInt(argStr, 10, 64)
		if err != nil {
			return ActionUnknown, 0, false
		}
	}
	return action, arg, true
}

type actionHandler func(ctx context.Context, cb *tgbotapi.CallbackQuery, arg int64)

// registerActions builds the dispatch table. Every action in the enum
// has exactly one handler; adding an action without wiring it here is
// caught by TestActionTableComplete.
func (b *Bot) registerActions() {
	b.actions = map[Action]actionHandler{
		ActionMainMenu:   b.showMainMenu,
		ActionVIPMenu:    b.showVIPMenu,
		ActionFreeMenu:   b.showFreeMenu,
		ActionConfigMenu: b.showConfigMenu,
		ActionStatsMenu:  b.showStatsMenu,
		ActionRanksMenu:  b.showRanksMenu,

		ActionListTiers:      b.showTierList,
		ActionGenerateToken:  b.handleGenerateToken,
		ActionNewTier:        b.startTierWizard,
		ActionEditTier:       b.showTierEditMenu,
		ActionEditTierName:   b.startTierFieldInput(fieldTierName),
		ActionEditTierDays:   b.startTierFieldInput(fieldTierDays),
		ActionEditTierPrice:  b.startTierFieldInput(fieldTierPrice),
		ActionDeactivateTier: b.handleDeactivateTier,

		ActionVIPList:   b.showVIPPage,
		ActionVIPExport: b.handleVIPExport,
		ActionRevokeVIP: b.handleRevokeVIP,

		ActionSetWaitTime:       b.startConfigInput(fieldWaitTime),
		ActionSetVIPChannel:     b.startConfigInput(fieldVIPChannel),
		ActionSetFreeChannel:    b.startConfigInput(fieldFreeChannel),
		ActionSetVIPReactions:   b.startConfigInput(fieldVIPReactions),
		ActionSetFreeReactions:  b.startConfigInput(fieldFreeReactions),
		ActionToggleVIPProtect:  b.toggleProtection(true),
		ActionToggleFreeProtect: b.toggleProtection(false),

		ActionEditRank:   b.startRankWizard,
		ActionListPacks:  b.showPackList,
		ActionNewPack:    b.startPackWizard,
		ActionDeletePack: b.handleDeletePack,
		ActionPickPack:   b.handlePickPack,

		ActionWizardYes:    b.handleWizardAnswer(wizardEventYes),
		ActionWizardNo:     b.handleWizardAnswer(wizardEventNo),
		ActionCancelWizard: b.handleCancelWizard,
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	// Реакции доступны всем, ответ на callback отправляет сам обработчик.
	if strings.HasPrefix(callback.Data, reactionPrefix) {
		b.handleReactionCallback(ctx, callback)
		return
	}

	// Quita el reloj de espera del botón de inmediato.
	_ = b.tgService.AnswerCallback(callback.ID, "")

	if !b.isAdmin(userID) {
		return
	}

	action, arg, ok := parseAction(callback.Data)
	if !ok {
		b.logger.Warn().Str("data", callback.Data).Int64("user_id", userID).Msg("Unknown callback action")
		return
	}

	handler, ok := b.actions[action]
	if !ok {
		return
	}

	if b.metrics != nil {
		b.metrics.CallbacksProcessed.Inc()
	}
	handler(ctx, callback, arg)
}
