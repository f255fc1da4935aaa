package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalLegacyCameraOption(t *testing.T) {
	raw := `{
		"id": "11111111-1111-1111-1111-111111111111",
		"shape_id": "almond",
		"selected_sizing_option": "camera",
		"sizing_uploads": [{"id": "22222222-2222-2222-2222-222222222222", "file_name": "hand.jpg", "remote_url": "https://cdn/hand.jpg", "state": "uploaded"}],
		"quantity": 1
	}`

	var set NailSetDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &set))

	assert.Equal(t, SizingOptionManual, set.SelectedSizingOption)
	assert.True(t, set.HasSizingUpload())
}

func TestUnmarshalLegacyFollowUpFoldsIntoHelpFlags(t *testing.T) {
	raw := `{"shape_id": "square", "requires_follow_up": true}`

	var set NailSetDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &set))

	assert.True(t, set.RequiresDesignHelp)
	assert.True(t, set.RequiresSizingHelp)
}

func TestUnmarshalFollowUpDoesNotOverrideExplicitFlags(t *testing.T) {
	raw := `{"shape_id": "square", "requires_follow_up": true, "requires_design_help": true}`

	var set NailSetDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &set))

	assert.True(t, set.RequiresDesignHelp)
	assert.False(t, set.RequiresSizingHelp)
}

func TestUnmarshalDefaultsQuantityAndMode(t *testing.T) {
	var set NailSetDraft
	require.NoError(t, json.Unmarshal([]byte(`{"shape_id": "oval"}`), &set))

	assert.Equal(t, 1, set.Quantity)
	assert.Equal(t, SizeModeStandard, set.SizeMode)
	assert.NotNil(t, set.Sizes)
}

func TestMarshalEmitsDerivedFollowUp(t *testing.T) {
	set := NewNailSetDraft()
	set.ShapeID = "square"
	set.RequiresSizingHelp = true

	b, err := json.Marshal(set)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, true, out["requires_follow_up"])
	assert.Equal(t, false, out["requires_design_help"])
	assert.Equal(t, true, out["requires_sizing_help"])
}

func TestNormalizeRecordDefaults(t *testing.T) {
	rec := OrderRecord{NailSets: []NailSetDraft{{ShapeID: "square", SelectedSizingOption: SizingOptionCamera}}}

	NormalizeRecord(&rec)

	assert.Equal(t, SizingOptionManual, rec.NailSets[0].SelectedSizingOption)
	assert.Equal(t, 1, rec.NailSets[0].Quantity)
	assert.Equal(t, DeliveryMethodPickup, rec.Delivery.Method)
	assert.Equal(t, DeliverySpeedStandard, rec.Delivery.Speed)
	assert.Equal(t, OrderStatusDraft, rec.Status)
}
