package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierWizardTransitions(t *testing.T) {
	next, ok := nextWizardStep(wizardTierCreate, stepTierName, wizardEventInput)
	require.True(t, ok)
	assert.Equal(t, stepTierDays, next)

	next, ok = nextWizardStep(wizardTierCreate, stepTierDays, wizardEventInput)
	require.True(t, ok)
	assert.Equal(t, stepTierPrice, next)

	next, ok = nextWizardStep(wizardTierCreate, stepTierPrice, wizardEventInput)
	require.True(t, ok)
	assert.Equal(t, stepDone, next)
}

func TestRankWizardSkipsVIPDaysOnNo(t *testing.T) {
	// "No" en la pregunta de días VIP salta directamente al paquete.
	next, ok := nextWizardStep(wizardRankReward, stepRankAskVIP, wizardEventNo)
	require.True(t, ok)
	assert.Equal(t, stepRankAskPack, next)

	next, ok = nextWizardStep(wizardRankReward, stepRankAskVIP, wizardEventYes)
	require.True(t, ok)
	assert.Equal(t, stepRankVIPDays, next)

	next, ok = nextWizardStep(wizardRankReward, stepRankVIPDays, wizardEventInput)
	require.True(t, ok)
	assert.Equal(t, stepRankAskPack, next)

	next, ok = nextWizardStep(wizardRankReward, stepRankAskPack, wizardEventNo)
	require.True(t, ok)
	assert.Equal(t, stepDone, next)

	next, ok = nextWizardStep(wizardRankReward, stepRankAskPack, wizardEventYes)
	require.True(t, ok)
	assert.Equal(t, stepRankPickPack, next)
}

func TestPackWizardLoopsOnMedia(t *testing.T) {
	next, ok := nextWizardStep(wizardPackCreate, stepPackMedia, wizardEventInput)
	require.True(t, ok)
	assert.Equal(t, stepPackMedia, next)

	next, ok = nextWizardStep(wizardPackCreate, stepPackMedia, wizardEventDone)
	require.True(t, ok)
	assert.Equal(t, stepDone, next)
}

func TestUnknownTransition(t *testing.T) {
	_, ok := nextWizardStep(wizardTierCreate, stepTierName, wizardEventYes)
	assert.False(t, ok)

	_, ok = nextWizardStep("no_such_wizard", stepTierName, wizardEventInput)
	assert.False(t, ok)

	_, ok = nextWizardStep(wizardRankReward, stepRankVIPDays, wizardEventYes)
	assert.False(t, ok)
}
