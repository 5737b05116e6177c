package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackDataRoundTrip(t *testing.T) {
	data := callbackData(ActionGenerateToken, 42)
	assert.Equal(t, "gen_token:42", data)

	action, arg, ok := parseAction(data)
	require.True(t, ok)
	assert.Equal(t, ActionGenerateToken, action)
	assert.Equal(t, int64(42), arg)
}

func TestCallbackDataWithoutArg(t *testing.T) {
	data := callbackData(ActionMainMenu)
	assert.Equal(t, "menu_main", data)

	action, arg, ok := parseAction(data)
	require.True(t, ok)
	assert.Equal(t, ActionMainMenu, action)
	assert.Equal(t, int64(0), arg)
}

func TestParseActionRejectsUnknown(t *testing.T) {
	_, _, ok := parseAction("definitely_not_an_action")
	assert.False(t, ok)

	_, _, ok = parseAction("gen_token:not_a_number")
	assert.False(t, ok)

	_, _, ok = parseAction("")
	assert.False(t, ok)
}

// Every named action must have exactly one handler in the dispatch
// table, so a button can never point at a hole.
func TestActionTableComplete(t *testing.T) {
	b := &Bot{}
	b.registerActions()

	for action, name := range actionNames {
		_, ok := b.actions[action]
		assert.True(t, ok, "action %q has no handler", name)
	}
	assert.Len(t, b.actions, len(actionNames))
}
